package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/ticktick-mcp/internal/auth"
	"github.com/teemow/ticktick-mcp/internal/credentials"
	"github.com/teemow/ticktick-mcp/internal/logging"
)

// authOptions is the resolved configuration of the auth command.
type authOptions struct {
	ClientID          string
	ClientSecret      string
	Provider          string
	Port              int
	Timeout           time.Duration
	NoBrowser         bool
	CredentialsFile   string
	CredentialBackend string
}

func loadAuthOptions(v *viper.Viper) (authOptions, error) {
	opts := authOptions{
		ClientID:          v.GetString("client-id"),
		ClientSecret:      v.GetString("client-secret"),
		Provider:          v.GetString("provider"),
		Port:              v.GetInt("port"),
		Timeout:           v.GetDuration("timeout"),
		NoBrowser:         v.GetBool("no-browser"),
		CredentialsFile:   v.GetString("credentials-file"),
		CredentialBackend: v.GetString("credential-backend"),
	}

	switch opts.CredentialBackend {
	case backendFile, backendKeyring:
	default:
		return opts, fmt.Errorf("unsupported credential backend: %s (supported: file, keyring)", opts.CredentialBackend)
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return opts, fmt.Errorf("invalid port %d", opts.Port)
	}
	if opts.Timeout <= 0 {
		return opts, fmt.Errorf("timeout must be positive, got %s", opts.Timeout)
	}
	return opts, nil
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize ticktick-mcp with your TickTick account",
		Long: `Run the OAuth2 authorization code flow against TickTick or Dida365.

The command prints the authorization URL and opens it in your browser, then
waits for the provider to redirect back to http://localhost:<port>/callback.
The redirect URI must be registered for your app in the developer console.

Client ID and secret are taken from the flags or, when omitted, from the
existing credential file. The resulting tokens are written back to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := loadAuthOptions(v)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store := newCredentialStore(opts.CredentialsFile, opts.CredentialBackend)
			return runAuth(ctx, cmd.OutOrStdout(), store, opts, openBrowser)
		},
	}

	cmd.Flags().String("client-id", "", "OAuth client ID (overrides the credential file)")
	cmd.Flags().String("client-secret", "", "OAuth client secret (overrides the credential file)")
	cmd.Flags().String("provider", "", "Service provider: ticktick or dida365 (default keeps the stored endpoints)")
	cmd.Flags().Int("port", auth.DefaultCallbackPort, "Local port for the OAuth callback")
	cmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for the browser callback")
	cmd.Flags().Bool("no-browser", false, "Print the authorization URL without opening a browser")
	cmd.Flags().String("credentials-file", credentials.DefaultPath, "Path of the credential file")
	cmd.Flags().String("credential-backend", backendFile, "Where secrets are stored: file or keyring")

	return cmd
}

// runAuth seeds the store with the client configuration and performs the
// authorization code flow. open is called with the authorize URL.
func runAuth(ctx context.Context, out io.Writer, store credentials.Store, opts authOptions, open func(string) error) error {
	creds, err := store.Load()
	var missing *credentials.MissingCredentialsError
	if err != nil && !errors.As(err, &missing) {
		return err
	}

	if opts.ClientID != "" {
		creds.ClientID = opts.ClientID
	}
	if opts.ClientSecret != "" {
		creds.ClientSecret = opts.ClientSecret
	}
	if opts.Provider != "" {
		if err := creds.ApplyProvider(opts.Provider); err != nil {
			return err
		}
	}
	if !creds.HasClient() {
		return errors.New("client ID and secret are required: pass --client-id and --client-secret or set TICKTICK_CLIENT_ID and TICKTICK_CLIENT_SECRET")
	}
	if err := store.Save(creds); err != nil {
		return fmt.Errorf("failed to save client configuration: %w", err)
	}

	manager, err := auth.NewManager(store, auth.WithLogger(logging.New(os.Stderr, logging.FormatText, false)))
	if err != nil {
		return err
	}

	authURL, err := manager.BeginAuthorization(auth.RedirectURI(opts.Port))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Open the following URL in your browser to authorize ticktick-mcp:")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, authURL)
	_, _ = fmt.Fprintln(out)

	if !opts.NoBrowser && open != nil {
		if err := open(authURL); err != nil {
			_, _ = fmt.Fprintf(out, "Could not open a browser (%v), please open the URL manually.\n", err)
		}
	}

	_, _ = fmt.Fprintf(out, "Waiting for the authorization callback on %s (timeout %s)...\n", auth.RedirectURI(opts.Port), opts.Timeout)

	code, err := manager.AwaitCallback(ctx, opts.Port, opts.Timeout)
	if err != nil {
		return err
	}

	if _, err := manager.ExchangeCode(ctx, code); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Authorization successful, tokens saved.")
	if f, ok := store.(*credentials.FileStore); ok {
		_, _ = fmt.Fprintf(out, "Credential file: %s\n", f.Path())
	}
	return nil
}
