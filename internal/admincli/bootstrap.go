// Package admincli implements the operator command that creates the first
// administrator or promotes an existing account.
package admincli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/dbx"
	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hicomm/internal/server/services"
)

// DefaultNickname is the display name given to a newly created administrator.
const DefaultNickname = "admin"

type Outcome int

const (
	Created Outcome = iota + 1
	Promoted
	AlreadyAdmin
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Promoted:
		return "promoted"
	case AlreadyAdmin:
		return "already admin"
	default:
		return "unknown"
	}
}

// Bootstrapper grants administrator rights.
type Bootstrapper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	logger      logging.Logger
}

func NewBootstrapper(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher, l logging.Logger) *Bootstrapper {
	return &Bootstrapper{db: db, repomanager: m, hasher: hasher, logger: l.With("module", "admin_bootstrap")}
}

// EnsureAdmin makes username an administrator. A missing account is created
// with password and nickname; an existing one is promoted and keeps its
// password. The lookup and the write share one transaction.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context, username string, password []byte, nickname string) (*models.Identity, Outcome, error) {
	if nickname == "" {
		nickname = DefaultNickname
	}

	var (
		identity *models.Identity
		outcome  Outcome
	)
	err := dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := b.repomanager.Users(tx)

		existing, err := users.FindByLogin(ctx, username)
		switch {
		case err == nil:
			identity = existing.Identity()
			if existing.IsAdmin {
				outcome = AlreadyAdmin
				return nil
			}
			if err := users.SetAdmin(ctx, existing.ID, true); err != nil {
				return err
			}
			identity.IsAdmin = true
			outcome = Promoted
			return nil
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		req := services.SignupRequest{Username: username, Password: string(password), Nickname: nickname}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}

		hash, err := b.hasher.Hash(req.Password)
		if err != nil {
			return err
		}

		created, err := users.Create(ctx, &models.User{
			Username:     username,
			PasswordHash: hash,
			Nickname:     nickname,
			IsAdmin:      true,
		})
		if err != nil {
			return err
		}
		identity = created.Identity()
		outcome = Created
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	b.logger.Info(ctx, "administrator ready", "username", identity.Username, "user_id", identity.ID, "outcome", outcome.String())
	return identity, outcome, nil
}
