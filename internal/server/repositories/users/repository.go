package users

import (
	"context"

	"github.com/dmitrijs2005/hicomm/internal/server/models"
)

// Repository stores accounts. Login-name uniqueness is enforced here; a
// duplicate Create fails with common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByLogin(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.Identity, error)
	Delete(ctx context.Context, id int64) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
}
