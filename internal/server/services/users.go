// Package services contains server-side business logic. This file implements
// UserService, which handles sign-up, login and account withdrawal.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

// SignupRequest is the input of UserService.Signup.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(3, 20)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(4, 0), validation.Length(0, auth.MaxPasswordBytes)),
		validation.Field(&r.Nickname, validation.Required),
	)
}

// LoginRequest is the input of UserService.Login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UserService provides account operations:
// - Signup: create a user
// - Login: check credentials
// - Withdraw: delete the caller's account
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher) *UserService {
	return &UserService{db: db, repomanager: m, hasher: hasher}
}

// Signup creates a regular (non-admin) account. A taken username yields
// common.ErrConflict.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Nickname:     req.Nickname,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user.Identity(), nil
}

// Login returns the identity for a correct username/password pair. An unknown
// username and a wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*models.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	user, err := s.repomanager.Users(s.db).FindByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(req.Password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return user.Identity(), nil
}

// Withdraw deletes the actor's account. Their posts and comments stay, with
// no author.
func (s *UserService) Withdraw(ctx context.Context, actor *models.Identity) error {
	if actor == nil {
		return common.ErrorUnauthorized
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, actor.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

// FindByID makes UserService usable as the session resolver's identity source.
func (s *UserService) FindByID(ctx context.Context, id int64) (*models.Identity, error) {
	return s.repomanager.Users(s.db).FindByID(ctx, id)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorValidation, err)
}
