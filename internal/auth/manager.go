package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	lfsm "github.com/looplab/fsm"
	"golang.org/x/oauth2"

	"github.com/teemow/ticktick-mcp/internal/credentials"
	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/logging"
)

// DefaultScopes are the TickTick open API scopes requested during authorization.
var DefaultScopes = []string{"tasks:read", "tasks:write"}

// expiryThreshold is how close to its expiry an access token is refreshed proactively.
const expiryThreshold = 60 * time.Second

// Manager owns the OAuth token lifecycle for a single credential set.
//
// It is safe for concurrent use. Refreshes are serialized and deduplicated:
// callers hand back the token that was rejected, and only the first caller for
// a given token talks to the token endpoint.
type Manager struct {
	store      credentials.Store
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	scopes     []string
	now        func() time.Time

	mu           sync.Mutex
	creds        credentials.Credentials
	expiry       time.Time
	session      *session
	revokedToken string
	machine      *lfsm.FSM

	// loaded is the token pair the store returned on the last load. The
	// store may layer fixed environment values over the file, so only a
	// change in this pair means another writer produced new tokens.
	loaded tokenPair
}

type tokenPair struct {
	access, refresh string
}

func tokensOf(c credentials.Credentials) tokenPair {
	return tokenPair{access: c.AccessToken, refresh: c.RefreshToken}
}

// session is the ephemeral state of one authorization flow.
type session struct {
	state       string
	redirectURI string
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used for token endpoint requests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithMetrics enables OAuth metrics.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithScopes overrides the requested scopes.
func WithScopes(scopes ...string) Option {
	return func(m *Manager) { m.scopes = scopes }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager loads credentials from store. The manager starts Authenticated
// when an access token is present and Unauthenticated otherwise.
func NewManager(store credentials.Store, opts ...Option) (*Manager, error) {
	creds, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load credentials")
	}

	m := &Manager{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		scopes:     DefaultScopes,
		now:        time.Now,
		creds:      creds,
		loaded:     tokensOf(creds),
	}
	for _, opt := range opts {
		opt(m)
	}

	initial := StateUnauthenticated
	if creds.HasAccessToken() {
		initial = StateAuthenticated
	}
	m.machine = newMachine(initial, m.logger)
	return m, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.machine.Current())
}

// Credentials returns a copy of the current credentials.
func (m *Manager) Credentials() credentials.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

// BeginAuthorization returns the provider's authorize URL for redirectURI.
// It performs no network call.
func (m *Manager) BeginAuthorization(redirectURI string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkClient(); err != nil {
		return "", err
	}
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &ConfigurationError{Field: "redirect_uri", Reason: "must be an absolute URL"}
	}

	if err := fire(m.machine, eventBegin); err != nil {
		return "", err
	}
	m.session = &session{
		state:       uuid.NewString(),
		redirectURI: redirectURI,
	}

	return m.oauthConfig(redirectURI).AuthCodeURL(m.session.state), nil
}

// ExchangeCode trades an authorization code for tokens and persists them.
// The redirect URI of the pending authorization is sent along with the code.
func (m *Manager) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := logging.WithOperation(m.logger, "auth.exchange")

	if err := m.checkClient(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, &CallbackError{Code: "missing_code", Description: "authorization code is empty"}
	}
	var redirectURI string
	if m.session != nil {
		redirectURI = m.session.redirectURI
	}

	tok, err := m.oauthConfig(redirectURI).Exchange(m.oauthContext(ctx), code)
	if err != nil {
		m.recordAuth(ctx, instrumentation.OAuthResultFailure)
		m.failSessionLocked()
		te := tokenExchangeError(err)
		logger.Warn("authorization code exchange failed", logging.Err(te))
		return nil, te
	}

	m.recordAuth(ctx, instrumentation.OAuthResultSuccess)
	m.applyToken(tok)
	m.session = nil
	m.revokedToken = ""
	if err := fire(m.machine, eventExchanged); err != nil {
		return nil, err
	}

	logger.Info("authorization completed", "access_token", logging.SanitizeToken(tok.AccessToken))

	if err := m.store.Save(m.creds); err != nil {
		return tok, errors.Wrap(err, "tokens obtained but could not be saved")
	}
	return tok, nil
}

// ValidToken returns an access token believed to be valid, refreshing first
// when its known expiry is about to pass.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.State() {
	case StateAuthenticated:
		if m.expiry.IsZero() || m.now().Add(expiryThreshold).Before(m.expiry) {
			return m.creds.AccessToken, nil
		}
		return m.refreshLocked(ctx, m.creds.AccessToken)
	case StateExpired:
		return m.refreshLocked(ctx, "")
	default:
		return "", newReauthRequired("no usable access token", nil)
	}
}

// Refresh obtains a new access token after rejected was refused by the API.
// When the current token already differs from rejected, it is returned as is.
func (m *Manager) Refresh(ctx context.Context, rejected string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx, rejected)
}

func (m *Manager) refreshLocked(ctx context.Context, rejected string) (string, error) {
	logger := logging.WithOperation(m.logger, "auth.refresh")

	switch m.State() {
	case StateAuthenticated:
		if rejected != "" && rejected != m.creds.AccessToken {
			return m.creds.AccessToken, nil
		}
		if err := fire(m.machine, eventExpire); err != nil {
			return "", err
		}
	case StateExpired:
	default:
		return "", newReauthRequired("not authenticated", nil)
	}

	if m.creds.RefreshToken == "" {
		m.revokedToken = m.creds.AccessToken
		if err := fire(m.machine, eventRevoke); err != nil {
			return "", err
		}
		m.recordRefresh(ctx, instrumentation.OAuthResultExpired)
		return "", newReauthRequired("no refresh token available", nil)
	}
	if err := m.checkClient(); err != nil {
		return "", err
	}

	if err := fire(m.machine, eventRefresh); err != nil {
		return "", err
	}

	src := m.oauthConfig("").TokenSource(m.oauthContext(ctx), &oauth2.Token{
		RefreshToken: m.creds.RefreshToken,
	})
	tok, err := src.Token()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			_ = fire(m.machine, eventAbort)
			m.recordRefresh(ctx, instrumentation.OAuthResultFailure)
			return "", errors.Wrap(ctxErr, "token refresh cancelled")
		}

		te := tokenExchangeError(err)
		if te.isRejection() {
			m.revokedToken = m.creds.AccessToken
			if ferr := fire(m.machine, eventRevoke); ferr != nil {
				return "", ferr
			}
			m.recordRefresh(ctx, instrumentation.OAuthResultExpired)
			logger.Warn("refresh token rejected", logging.Err(te))
			return "", newReauthRequired("refresh token was rejected", te)
		}

		_ = fire(m.machine, eventAbort)
		m.recordRefresh(ctx, instrumentation.OAuthResultFailure)
		logger.Warn("token refresh failed", logging.Err(te))
		return "", te
	}

	m.applyToken(tok)
	if err := fire(m.machine, eventRefreshed); err != nil {
		return "", err
	}
	m.recordRefresh(ctx, instrumentation.OAuthResultSuccess)
	logger.Info("access token refreshed", "access_token", logging.SanitizeToken(tok.AccessToken))

	if err := m.store.Save(m.creds); err != nil {
		logger.Error("refreshed tokens could not be saved", logging.Err(err))
	}
	return m.creds.AccessToken, nil
}

// Reload re-reads the store, picking up tokens written by another process.
// Tokens are only adopted when the store's view of them changed since the
// last load, so the manager's own saves, or tokens pinned by the environment,
// never replace fresher in-memory tokens. A token that was already rejected
// does not re-authenticate the manager.
func (m *Manager) Reload() error {
	creds, err := m.store.Load()
	if err != nil {
		return errors.Wrap(err, "failed to reload credentials")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := tokensOf(creds)
	if stored == m.loaded {
		creds.AccessToken = m.creds.AccessToken
		creds.RefreshToken = m.creds.RefreshToken
	}
	m.loaded = stored

	tokensChanged := tokensOf(creds) != tokensOf(m.creds)
	m.creds = creds
	if !tokensChanged {
		return nil
	}
	m.expiry = time.Time{}

	if creds.HasAccessToken() && creds.AccessToken != m.revokedToken {
		switch m.State() {
		case StateUnauthenticated, StateExpired:
			if err := fire(m.machine, eventLoad); err != nil {
				return err
			}
			m.logger.Info("credentials reloaded", "access_token", logging.SanitizeToken(creds.AccessToken))
		}
	}
	return nil
}

// applyToken stores tok in memory. A response without a refresh token keeps the old one.
func (m *Manager) applyToken(tok *oauth2.Token) {
	m.creds.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		m.creds.RefreshToken = tok.RefreshToken
	}
	m.expiry = tok.Expiry
}

func (m *Manager) checkClient() error {
	if m.creds.ClientID == "" {
		return errors.WithHint(&ConfigurationError{Field: credentials.KeyClientID, Reason: "is not set"},
			"register an app at https://developer.ticktick.com and set TICKTICK_CLIENT_ID")
	}
	if m.creds.ClientSecret == "" {
		return errors.WithHint(&ConfigurationError{Field: credentials.KeyClientSecret, Reason: "is not set"},
			"set TICKTICK_CLIENT_SECRET from the developer console")
	}
	return nil
}

func (m *Manager) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     m.creds.ClientID,
		ClientSecret: m.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   m.creds.AuthorizeURL(),
			TokenURL:  m.creds.TokenEndpoint(),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: redirectURI,
		Scopes:      m.scopes,
	}
}

func (m *Manager) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) recordAuth(ctx context.Context, result string) {
	if m.metrics != nil {
		m.metrics.RecordOAuthAuth(ctx, result)
	}
}

func (m *Manager) recordRefresh(ctx context.Context, result string) {
	if m.metrics != nil {
		m.metrics.RecordOAuthTokenRefresh(ctx, result)
	}
}
