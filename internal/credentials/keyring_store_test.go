package credentials

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore_SecretsStayOutOfFile(t *testing.T) {
	keyring.MockInit()

	base, fs := newMemStore(t, "")
	store := NewKeyringStore(base)

	creds := Credentials{
		ClientID:     "client",
		ClientSecret: "secret",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
	require.NoError(t, store.Save(creds))

	data, err := afero.ReadFile(fs, "/work/.env")
	require.NoError(t, err)
	assert.Contains(t, string(data), "client")
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "access")
	assert.NotContains(t, string(data), "refresh")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, loaded)
}

func TestKeyringStore_ClearsRemovedSecrets(t *testing.T) {
	keyring.MockInit()

	base, _ := newMemStore(t, "")
	store := NewKeyringStore(base)

	require.NoError(t, store.Save(Credentials{ClientID: "c", ClientSecret: "s", AccessToken: "a"}))
	require.NoError(t, store.Save(Credentials{ClientID: "c", ClientSecret: "s"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.AccessToken)

	_, err = keyring.Get(KeyringService, KeyAccessToken)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestKeyringStore_MissingEverywhere(t *testing.T) {
	keyring.MockInit()

	base, _ := newMemStore(t, "")
	_, err := NewKeyringStore(base).Load()

	var missing *MissingCredentialsError
	assert.True(t, errors.As(err, &missing))
}
