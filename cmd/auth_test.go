package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ticktick-mcp/internal/credentials"
)

func memStore(t *testing.T) *credentials.FileStore {
	t.Helper()
	return credentials.NewFileStore("/creds/.env",
		credentials.WithFs(afero.NewMemMapFs()),
		credentials.WithEnvLookup(nil),
	)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// redirectBack simulates the browser: it follows the authorize URL back to
// the local callback with the given code.
func redirectBack(t *testing.T, port int, code string) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		callback := fmt.Sprintf("http://127.0.0.1:%d/callback?code=%s&state=%s",
			port, code, url.QueryEscape(u.Query().Get("state")))

		go func() {
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				resp, err := http.Get(callback)
				if err == nil {
					_ = resp.Body.Close()
					return
				}
				time.Sleep(20 * time.Millisecond)
			}
			t.Errorf("callback server never came up on port %d", port)
		}()
		return nil
	}
}

func TestRunAuth(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	}))
	defer tokens.Close()

	store := memStore(t)
	require.NoError(t, store.Save(credentials.Credentials{TokenURL: tokens.URL}))

	port := freePort(t)
	var out bytes.Buffer
	err := runAuth(context.Background(), &out, store, authOptions{
		ClientID:     "client",
		ClientSecret: "secret",
		Port:         port,
		Timeout:      10 * time.Second,
	}, redirectBack(t, port, "the-code"))
	require.NoError(t, err)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "client", creds.ClientID)
	assert.Equal(t, "secret", creds.ClientSecret)
	assert.Equal(t, "access-1", creds.AccessToken)
	assert.Equal(t, "refresh-1", creds.RefreshToken)

	assert.Contains(t, out.String(), "https://ticktick.com/oauth/authorize?")
	assert.Contains(t, out.String(), "Authorization successful")
	assert.Contains(t, out.String(), "/creds/.env")
}

func TestRunAuth_RequiresClient(t *testing.T) {
	store := memStore(t)

	err := runAuth(context.Background(), &bytes.Buffer{}, store, authOptions{
		Port:    freePort(t),
		Timeout: time.Second,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID and secret are required")
}

func TestRunAuth_UnknownProvider(t *testing.T) {
	store := memStore(t)

	err := runAuth(context.Background(), &bytes.Buffer{}, store, authOptions{
		ClientID:     "client",
		ClientSecret: "secret",
		Provider:     "todoist",
		Port:         freePort(t),
		Timeout:      time.Second,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "todoist"`)
}

func TestRunAuth_Dida365ProviderIsSaved(t *testing.T) {
	store := memStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var opened string
	err := runAuth(ctx, &bytes.Buffer{}, store, authOptions{
		ClientID:     "client",
		ClientSecret: "secret",
		Provider:     "dida365",
		Port:         freePort(t),
		Timeout:      time.Second,
	}, func(u string) error {
		opened = u
		return nil
	})
	// The cancelled context aborts the wait for the callback.
	require.Error(t, err)

	assert.Contains(t, opened, credentials.Dida365AuthURL)
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, credentials.Dida365BaseURL, creds.BaseURL)
}

func TestLoadAuthOptions_Invalid(t *testing.T) {
	cmd := newAuthCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--timeout", "0s"}))

	v, err := bindConfig(cmd)
	require.NoError(t, err)

	_, err = loadAuthOptions(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout must be positive")
}
