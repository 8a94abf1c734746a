package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentities struct {
	users map[int64]*models.Identity
	err   error
	calls int
}

func (f *fakeIdentities) FindByID(_ context.Context, id int64) (*models.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func newTestResolver(t *testing.T, users *fakeIdentities) (*SessionResolver, *fakeClock) {
	t.Helper()
	codec, clock := newTestCodec("resolver-secret")
	return NewSessionResolver(codec, users, logging.Nop{}), clock
}

func TestResolve_EmptyToken(t *testing.T) {
	users := &fakeIdentities{}
	r, _ := newTestResolver(t, users)

	got, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, users.calls, "no lookup without a token")
}

func TestResolve_ValidToken(t *testing.T) {
	alice := &models.Identity{ID: 1, Username: "alice", Nickname: "Alice"}
	users := &fakeIdentities{users: map[int64]*models.Identity{1: alice}}
	r, _ := newTestResolver(t, users)

	tok, err := r.Establish(1)
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestResolve_SeesPrivilegeChanges(t *testing.T) {
	users := &fakeIdentities{users: map[int64]*models.Identity{1: {ID: 1, Username: "alice"}}}
	r, _ := newTestResolver(t, users)

	tok, err := r.Establish(1)
	require.NoError(t, err)

	users.users[1] = &models.Identity{ID: 1, Username: "alice", IsAdmin: true}

	got, err := r.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
}

func TestResolve_InvalidTokensYieldNoSession(t *testing.T) {
	users := &fakeIdentities{users: map[int64]*models.Identity{1: {ID: 1}}}
	r, clock := newTestResolver(t, users)

	other := NewTokenCodec([]byte("another-secret"), time.Hour)
	foreign, err := other.Issue(1)
	require.NoError(t, err)

	expired, err := r.Establish(1)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "garbage",
		"wrong secret": foreign,
	} {
		got, err := r.Resolve(context.Background(), tok)
		require.NoError(t, err, name)
		assert.Nil(t, got, name)
	}

	clock.t = epoch.Add(DefaultTokenTTL + time.Minute)
	got, err := r.Resolve(context.Background(), expired)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Zero(t, users.calls, "rejected tokens never reach storage")
}

func TestResolve_ZombieToken(t *testing.T) {
	users := &fakeIdentities{users: map[int64]*models.Identity{1: {ID: 1}}}
	r, _ := newTestResolver(t, users)

	tok, err := r.Establish(1)
	require.NoError(t, err)

	delete(users.users, 1)

	got, err := r.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve_StorageFailure(t *testing.T) {
	users := &fakeIdentities{err: errors.New("db down")}
	r, _ := newTestResolver(t, users)

	tok, err := r.Establish(1)
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), tok)
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "db down")
}

func TestMaxAge(t *testing.T) {
	r := NewSessionResolver(NewTokenCodec([]byte("k"), 0), &fakeIdentities{}, nil)
	assert.Equal(t, 604800, r.MaxAge())
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFromContext(ctx))

	id := &models.Identity{ID: 3}
	assert.Same(t, id, IdentityFromContext(WithIdentity(ctx, id)))
}
