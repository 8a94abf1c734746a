package posts

import (
	"context"

	"github.com/dmitrijs2005/hicomm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	// List returns one page of a board, notices first, then newest first.
	List(ctx context.Context, boardID string, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, boardID string) (int64, error)
	IncrementViews(ctx context.Context, id int64) error
	// FindAuthor locks the post row until the surrounding transaction ends
	// and returns its author id, nil for a withdrawn author.
	FindAuthor(ctx context.Context, id int64) (*int64, error)
	Delete(ctx context.Context, id int64) error
	SetNotice(ctx context.Context, id int64, isNotice bool) error
}
