package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("TWGRAPH_BEARER_TOKEN", "env-token")

	store := NewEnvironmentStore()
	creds, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", creds.BearerToken)
	assert.Equal(t, "default", creds.Label)
	assert.True(t, store.Exists(""))
}

func TestEnvironmentStoreKeyPair(t *testing.T) {
	t.Setenv("TWGRAPH_BEARER_TOKEN", "")
	t.Setenv("TWGRAPH_API_KEY", "key")
	t.Setenv("TWGRAPH_API_SECRET", "secret")

	store := NewEnvironmentStore()
	creds, err := store.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "work", creds.Label)
	assert.True(t, creds.Complete())
}

func TestEnvironmentStoreIncomplete(t *testing.T) {
	t.Setenv("TWGRAPH_BEARER_TOKEN", "")
	t.Setenv("TWGRAPH_API_KEY", "key-without-secret")
	t.Setenv("TWGRAPH_API_SECRET", "")
	t.Setenv("TWGRAPH_ACCESS_TOKEN", "")
	t.Setenv("TWGRAPH_ACCESS_SECRET", "")

	store := NewEnvironmentStore()
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentStoreReadOnly(t *testing.T) {
	store := NewEnvironmentStore()
	assert.ErrorIs(t, store.Store(&Credentials{Label: "x"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)
}

func TestCredentialsComplete(t *testing.T) {
	assert.True(t, (&Credentials{BearerToken: "t"}).Complete())
	assert.True(t, (&Credentials{APIKey: "k", APISecret: "s"}).Complete())
	assert.False(t, (&Credentials{APIKey: "k"}).Complete())
	assert.False(t, (&Credentials{}).Complete())
}
