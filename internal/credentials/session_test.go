package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/core"
)

type failingStore struct{ *MemoryStore }

func (failingStore) Clear(context.Context) error { return errors.New("disk gone") }

type failingWriteStore struct{ *MemoryStore }

func (failingWriteStore) SetAll(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func TestSessionSetAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s, err := NewSession(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())

	assert.Error(t, s.Set(ctx, "  ", core.User{}))

	user := core.User{ID: "1", Email: "demo@example.com", Name: "Demo"}
	require.NoError(t, s.Set(ctx, "tok", user))
	assert.True(t, s.IsAuthenticated())
	got, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, user, got)

	raw, ok, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"1","email":"demo@example.com","name":"Demo"}`, raw)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.IsAuthenticated())
	_, ok, _ = store.Get(ctx, KeyToken)
	assert.False(t, ok)
}

func TestSessionClearDropsMemoryStateOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, failingStore{NewMemoryStore()})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "tok", core.User{ID: "1"}))

	assert.Error(t, s.Clear(ctx))
	assert.Empty(t, s.Token())
}

func TestSessionDropsCorruptProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyToken, "tok"))
	require.NoError(t, store.Set(ctx, KeyUser, "{not json"))

	s, err := NewSession(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token())
	_, ok := s.User()
	assert.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	exp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any"))
	require.NoError(t, err)

	s, err := NewSession(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, token, core.User{ID: "1"}))

	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
	assert.False(t, s.Expired(exp.Add(-time.Minute)))
	assert.True(t, s.Expired(exp))

	require.NoError(t, s.Set(ctx, "opaque-token", core.User{ID: "1"}))
	_, ok = s.ExpiresAt()
	assert.False(t, ok)
	assert.False(t, s.Expired(exp.Add(time.Hour)))
}

func TestSessionSetFailureKeepsPreviousCredential(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	old := core.User{ID: "1", Email: "old@example.com", Name: "Old"}
	require.NoError(t, mem.Set(ctx, KeyToken, "old"))
	require.NoError(t, mem.Set(ctx, KeyUser, `{"id":"1","email":"old@example.com","name":"Old"}`))

	s, err := NewSession(ctx, failingWriteStore{mem})
	require.NoError(t, err)
	assert.Error(t, s.Set(ctx, "new", core.User{ID: "2", Name: "New"}))

	assert.Equal(t, "old", s.Token())
	got, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, old, got)
	stored, _, err := mem.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "old", stored)
}

func TestSessionClearIf(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s, err := NewSession(ctx, store)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "current", core.User{ID: "1"}))

	cleared, err := s.ClearIf(ctx, "previous")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Equal(t, "current", s.Token())

	cleared, err = s.ClearIf(ctx, "current")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, s.IsAuthenticated())
	_, ok, _ := store.Get(ctx, KeyToken)
	assert.False(t, ok)
}
