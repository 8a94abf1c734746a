package comments

import (
	"context"

	"github.com/dmitrijs2005/hicomm/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorNotFound when the post does not exist.
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	// ListByPost returns the comments of a post, oldest first.
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	FindAuthor(ctx context.Context, id int64) (*int64, error)
	Delete(ctx context.Context, id int64) error
}
