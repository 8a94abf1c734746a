package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
)

// IdentityFinder looks up the current, non-secret view of a user.
// It returns common.ErrorNotFound when the account does not exist.
type IdentityFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Identity, error)
}

// SessionResolver turns a stored token into the identity it names. Every
// resolution re-reads the account, so deletions and privilege changes take
// effect on the next request instead of when the token expires.
type SessionResolver struct {
	codec  *TokenCodec
	users  IdentityFinder
	logger logging.Logger
}

func NewSessionResolver(codec *TokenCodec, users IdentityFinder, logger logging.Logger) *SessionResolver {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &SessionResolver{
		codec:  codec,
		users:  users,
		logger: logger.With("module", "session"),
	}
}

// Resolve returns the identity for token, or nil when there is no valid
// session: empty token, any verification failure, or an account that no
// longer exists. The error result is reserved for storage failures.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := r.codec.Verify(token)
	if err != nil {
		var tokenErr *common.TokenError
		if errors.As(err, &tokenErr) {
			r.logger.Debug(ctx, "token rejected", "reason", tokenErr.Reason)
		}
		return nil, nil
	}

	identity, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.logger.Debug(ctx, "token subject no longer exists", "user_id", userID)
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return identity, nil
}

// Establish mints the token for a freshly authenticated user. Storing it on
// the client is the transport's job.
func (r *SessionResolver) Establish(userID int64) (string, error) {
	token, err := r.codec.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// MaxAge is the lifetime of established sessions in whole seconds, the unit
// cookies use.
func (r *SessionResolver) MaxAge() int {
	return int(r.codec.TTL().Seconds())
}
