package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for stored passwords.
const DefaultCost = 10

// MaxPasswordBytes is the longest password bcrypt reads in full; anything
// past it would be ignored.
const MaxPasswordBytes = 72

// Hasher produces and checks bcrypt password hashes.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     string
}

// NewHasher returns a Hasher with the given bcrypt cost. A cost outside
// bcrypt's range falls back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Passwords longer than
// MaxPasswordBytes are rejected.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("hash password: %w", bcrypt.ErrPasswordTooLong)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch, not an error. A plaintext over MaxPasswordBytes never matches,
// even though bcrypt would accept it by its prefix; the comparison still
// runs so the cost does not depend on the length.
func (h *Hasher) Verify(plaintext, hash string) bool {
	match := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	return match && len(plaintext) <= MaxPasswordBytes
}

// VerifyDummy spends the same work as Verify against a hash nobody knows the
// password of. Login calls it for unknown usernames so that both failure
// paths take equally long.
func (h *Hasher) VerifyDummy(plaintext string) {
	h.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		b, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), h.cost)
		if err == nil {
			h.dummy = string(b)
		}
	})
	_ = h.Verify(plaintext, h.dummy)
}

var defaultHasher = NewHasher(DefaultCost)

// HashPassword hashes plaintext with DefaultCost.
func HashPassword(plaintext string) (string, error) {
	return defaultHasher.Hash(plaintext)
}

// VerifyPassword checks plaintext against a bcrypt hash.
func VerifyPassword(plaintext, hash string) bool {
	return defaultHasher.Verify(plaintext, hash)
}
