package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ticktick-mcp/internal/server"
)

func TestLoadServeOptions_Defaults(t *testing.T) {
	cmd := newServeCmd()
	v, err := bindConfig(cmd)
	require.NoError(t, err)

	opts, err := loadServeOptions(v)
	require.NoError(t, err)

	assert.Equal(t, transportStdio, opts.Transport)
	assert.Equal(t, "127.0.0.1:8000", opts.HTTPAddr())
	assert.False(t, opts.ReadOnly)
	assert.Equal(t, ".env", opts.CredentialsFile)
	assert.Equal(t, backendFile, opts.CredentialBackend)
	assert.True(t, opts.WatchCredentials)
	assert.True(t, opts.Metrics.Enabled)
	assert.Equal(t, server.DefaultMetricsAddr, opts.Metrics.Addr)
}

func TestLoadServeOptions_Environment(t *testing.T) {
	t.Setenv("TICKTICK_MCP_TRANSPORT", "streamable-http")
	t.Setenv("TICKTICK_MCP_PORT", "9100")
	t.Setenv("TICKTICK_MCP_READ_ONLY", "true")
	t.Setenv("TICKTICK_MCP_CREDENTIAL_BACKEND", "keyring")

	cmd := newServeCmd()
	v, err := bindConfig(cmd)
	require.NoError(t, err)

	opts, err := loadServeOptions(v)
	require.NoError(t, err)

	assert.Equal(t, transportStreamableHTTP, opts.Transport)
	assert.Equal(t, 9100, opts.Port)
	assert.True(t, opts.ReadOnly)
	assert.Equal(t, backendKeyring, opts.CredentialBackend)
}

func TestLoadServeOptions_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TICKTICK_MCP_TRANSPORT", "streamable-http")
	t.Setenv("TICKTICK_MCP_HOST", "0.0.0.0")

	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--transport", "stdio", "--watch-credentials=false"}))

	v, err := bindConfig(cmd)
	require.NoError(t, err)
	opts, err := loadServeOptions(v)
	require.NoError(t, err)

	assert.Equal(t, transportStdio, opts.Transport)
	assert.Equal(t, "0.0.0.0", opts.Host)
	assert.False(t, opts.WatchCredentials)
}

func TestLoadServeOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown transport",
			args:    []string{"--transport", "sse"},
			wantErr: "unsupported transport type: sse",
		},
		{
			name:    "unknown credential backend",
			args:    []string{"--credential-backend", "vault"},
			wantErr: "unsupported credential backend: vault",
		},
		{
			name:    "port out of range",
			args:    []string{"--port", "70000"},
			wantErr: "invalid port 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCmd()
			require.NoError(t, cmd.Flags().Parse(tt.args))

			v, err := bindConfig(cmd)
			require.NoError(t, err)

			_, err = loadServeOptions(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
