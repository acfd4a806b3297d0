package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *EncryptedFileStore {
	t.Helper()
	t.Setenv("TWGRAPH_CREDENTIALS_KEY", "test-passphrase")

	store, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "credentials.enc"))
	require.NoError(t, err)
	return store
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	creds := &Credentials{
		Label:       "default",
		BearerToken: "secret-token",
	}
	require.NoError(t, store.Store(creds))

	loaded, err := store.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", loaded.BearerToken)
	assert.True(t, store.Exists("default"))
}

func TestEncryptedStoreRejectsUnlabeled(t *testing.T) {
	store := newTestFileStore(t)
	assert.ErrorIs(t, store.Store(&Credentials{BearerToken: "x"}), ErrInvalidCredentials)
}

func TestEncryptedStoreMissingLabel(t *testing.T) {
	store := newTestFileStore(t)
	_, err := store.Retrieve("absent")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedStoreDelete(t *testing.T) {
	store := newTestFileStore(t)

	require.NoError(t, store.Store(&Credentials{Label: "work", BearerToken: "t"}))
	require.NoError(t, store.Delete("work"))
	assert.False(t, store.Exists("work"))
}

func TestEncryptedStoreList(t *testing.T) {
	store := newTestFileStore(t)

	require.NoError(t, store.Store(&Credentials{Label: "a", BearerToken: "t1"}))
	require.NoError(t, store.Store(&Credentials{Label: "b", BearerToken: "t2"}))

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEncryptedFileIsNotPlaintext(t *testing.T) {
	t.Setenv("TWGRAPH_CREDENTIALS_KEY", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Credentials{Label: "default", BearerToken: "very-secret"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "very-secret")
}
