package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func newMemStore(t *testing.T, content string) (*FileStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if content != "" {
		require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte(content), 0o600))
	}
	return NewFileStore("/work/.env", WithFs(fs), WithEnvLookup(noEnv)), fs
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, _ := newMemStore(t, "")

	_, err := store.Load()
	require.Error(t, err)

	var missing *MissingCredentialsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "/work/.env", missing.Path)
	assert.NotEmpty(t, errors.FlattenHints(err))
}

func TestFileStore_Load(t *testing.T) {
	store, _ := newMemStore(t, `# credentials
TICKTICK_CLIENT_ID=client
TICKTICK_CLIENT_SECRET="secret"
TICKTICK_ACCESS_TOKEN=access
OTHER_KEY=keep-me
`)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "client", creds.ClientID)
	assert.Equal(t, "secret", creds.ClientSecret)
	assert.Equal(t, "access", creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)
	assert.Equal(t, DefaultBaseURL, creds.APIBaseURL())
	assert.Equal(t, DefaultTokenURL, creds.TokenEndpoint())
	assert.Equal(t, DefaultAuthURL, creds.AuthorizeURL())
}

func TestFileStore_EnvOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("TICKTICK_CLIENT_ID=file\n"), 0o600))

	env := map[string]string{
		KeyClientID: "env",
		KeyBaseURL:  "https://api.dida365.com/open/v1",
	}
	store := NewFileStore("/work/.env", WithFs(fs), WithEnvLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "env", creds.ClientID)
	assert.Equal(t, "https://api.dida365.com/open/v1", creds.APIBaseURL())
}

func TestFileStore_EnvOnly(t *testing.T) {
	store := NewFileStore("/missing/.env", WithFs(afero.NewMemMapFs()), WithEnvLookup(func(k string) (string, bool) {
		if k == KeyAccessToken {
			return "from-env", true
		}
		return "", false
	}))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", creds.AccessToken)
}

func TestFileStore_SavePreservesUnrelatedKeys(t *testing.T) {
	store, fs := newMemStore(t, "OTHER_KEY=keep-me\nTICKTICK_REFRESH_TOKEN=old\n")

	err := store.Save(Credentials{
		ClientID:     "client",
		ClientSecret: "secret",
		AccessToken:  "access",
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/work/.env")
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `OTHER_KEY="keep-me"`)
	assert.Contains(t, content, `TICKTICK_ACCESS_TOKEN="access"`)
	assert.NotContains(t, content, "TICKTICK_REFRESH_TOKEN", "empty field removes its key")

	info, err := fs.Stat("/work/.env")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())
}

func TestFileStore_SaveLoadIdempotent(t *testing.T) {
	store, fs := newMemStore(t, `TICKTICK_CLIENT_ID=client
TICKTICK_CLIENT_SECRET=s3cr3t=with=equals
TICKTICK_ACCESS_TOKEN=access
TICKTICK_REFRESH_TOKEN=refresh
TICKTICK_BASE_URL=https://api.dida365.com/open/v1
UNRELATED="a value with spaces"
`)

	first, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(first))
	written, err := afero.ReadFile(fs, "/work/.env")
	require.NoError(t, err)

	second, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, store.Save(second))
	rewritten, err := afero.ReadFile(fs, "/work/.env")
	require.NoError(t, err)
	assert.Equal(t, string(written), string(rewritten))
	assert.NotContains(t, string(written), KeyAuthURL, "defaults are not materialized")
}

func TestFileStore_OSFilesystemLocking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.env")
	store := NewFileStore(path, WithEnvLookup(noEnv))

	require.NoError(t, store.Save(Credentials{ClientID: "id", ClientSecret: "secret"}))

	_, err := os.Stat(path + ".lock")
	assert.NoError(t, err, "lock file is created next to the credential file")

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "id", creds.ClientID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file %s left behind", e.Name())
	}
}

func TestCredentials_ApplyProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantBase string
		wantErr  bool
	}{
		{name: "default", provider: "", wantBase: DefaultBaseURL},
		{name: "ticktick", provider: "ticktick", wantBase: DefaultBaseURL},
		{name: "dida365", provider: "dida365", wantBase: Dida365BaseURL},
		{name: "unknown", provider: "todoist", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Credentials
			err := c.ApplyProvider(tt.provider)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, c.APIBaseURL())
		})
	}
}
