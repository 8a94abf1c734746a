package auth

import (
	"context"

	"github.com/dmitrijs2005/hicomm/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores the resolved identity on ctx.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}
