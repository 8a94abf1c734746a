// Package auth is the session core of hicomm: password hashing, signed
// session tokens, resolving a token to a live identity, and the
// authorization rules evaluated against that identity.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenCodec issues and verifies HS256-signed session tokens whose subject
// is a user id. It is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec copies secret, so later changes to the caller's slice have
// no effect. A non-positive ttl means DefaultTokenTTL.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return newTokenCodec(secret, ttl, time.Now)
}

func newTokenCodec(secret []byte, ttl time.Duration, now func() time.Time) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenCodec{
		secret: key,
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}
}

// TTL is the lifetime stamped on issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a token for userID, valid from now until now+TTL.
func (c *TokenCodec) Issue(userID int64) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})

	return token.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the subject user id.
// Failures are one of common.ErrTokenMalformed, common.ErrTokenSignature or
// common.ErrTokenExpired, all of which match common.ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return 0, classify(err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrTokenMalformed
	}
	return userID, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrTokenMalformed
	}
}
