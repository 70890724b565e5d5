package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/config"
	"propmanager/internal/credentials"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("cli", "loud", &buf)
	assert.Contains(t, buf.String(), "Unknown log level")
	assert.Equal(t, "cli", logger.Component())

	buf.Reset()
	logger = SetupLogger("cli", "error", &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestOpenCredentialStore(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := OpenCredentialStore(&config.Config{CredentialBackend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &credentials.MemoryStore{}, store)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "nested", "creds.db")
	store, closeFn, err = OpenCredentialStore(&config.Config{CredentialBackend: "sqlite", CredentialsDBPath: path})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, credentials.KeyToken, "abc"))
	require.NoError(t, closeFn())

	store, closeFn, err = OpenCredentialStore(&config.Config{CredentialBackend: "sqlite", CredentialsDBPath: path})
	require.NoError(t, err)
	defer closeFn()
	v, ok, err := store.Get(ctx, credentials.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, _, err = OpenCredentialStore(&config.Config{CredentialBackend: "keyring"})
	assert.Error(t, err)
}
