package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/credentials"
	"propmanager/internal/gateway/memory"
)

func TestAuthServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	gw := memory.New(memory.Options{TokenTTL: time.Hour})
	session, err := credentials.NewSession(ctx, nil)
	require.NoError(t, err)
	auth := NewAuthService(gw, session)

	assert.False(t, auth.IsAuthenticated())

	user, err := auth.Register(ctx, "demo@example.com", "s3cret", "Demo")
	require.NoError(t, err)
	assert.True(t, auth.IsAuthenticated())
	current, ok := auth.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, user, current)

	require.NoError(t, auth.Logout(ctx))
	assert.False(t, auth.IsAuthenticated())

	_, err = auth.Login(ctx, "demo@example.com", "nope")
	assert.Error(t, err)
	assert.False(t, auth.IsAuthenticated(), "failed login leaves session empty")

	_, err = auth.Login(ctx, "demo@example.com", "s3cret")
	require.NoError(t, err)
	assert.True(t, auth.IsAuthenticated())

	// A token past its exp claim no longer counts.
	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.False(t, auth.IsAuthenticated())
	_, ok = auth.CurrentUser()
	assert.False(t, ok)
}
