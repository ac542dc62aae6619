package credentials

import (
	"github.com/cockroachdb/errors"
)

// Recognized keys of the credential file.
const (
	KeyClientID     = "TICKTICK_CLIENT_ID"
	KeyClientSecret = "TICKTICK_CLIENT_SECRET"
	KeyAccessToken  = "TICKTICK_ACCESS_TOKEN"
	KeyRefreshToken = "TICKTICK_REFRESH_TOKEN"
	KeyBaseURL      = "TICKTICK_BASE_URL"
	KeyAuthURL      = "TICKTICK_AUTH_URL"
	KeyTokenURL     = "TICKTICK_TOKEN_URL"
)

// Keys lists every recognized key in file order.
var Keys = []string{
	KeyClientID,
	KeyClientSecret,
	KeyAccessToken,
	KeyRefreshToken,
	KeyBaseURL,
	KeyAuthURL,
	KeyTokenURL,
}

// Default TickTick endpoints, used when the corresponding field is empty.
const (
	DefaultBaseURL  = "https://api.ticktick.com/open/v1"
	DefaultAuthURL  = "https://ticktick.com/oauth/authorize"
	DefaultTokenURL = "https://ticktick.com/oauth/token"
)

// Dida365 (China region) endpoints. Same protocol, different hosts.
const (
	Dida365BaseURL  = "https://api.dida365.com/open/v1"
	Dida365AuthURL  = "https://dida365.com/oauth/authorize"
	Dida365TokenURL = "https://dida365.com/oauth/token"
)

// Credentials is the persisted OAuth client and token set.
// Empty URL fields mean the TickTick defaults apply; see the accessor methods.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	BaseURL      string
	AuthURL      string
	TokenURL     string
}

// APIBaseURL returns the REST base URL, falling back to the TickTick default.
func (c Credentials) APIBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// AuthorizeURL returns the OAuth authorize endpoint.
func (c Credentials) AuthorizeURL() string {
	if c.AuthURL != "" {
		return c.AuthURL
	}
	return DefaultAuthURL
}

// TokenEndpoint returns the OAuth token endpoint.
func (c Credentials) TokenEndpoint() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return DefaultTokenURL
}

// HasClient reports whether both client id and secret are set.
func (c Credentials) HasClient() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// HasAccessToken reports whether an access token has been obtained.
func (c Credentials) HasAccessToken() bool {
	return c.AccessToken != ""
}

// ApplyProvider sets the endpoint URLs for a named provider ("ticktick" or "dida365").
func (c *Credentials) ApplyProvider(provider string) error {
	switch provider {
	case "", "ticktick":
		c.BaseURL, c.AuthURL, c.TokenURL = "", "", ""
	case "dida365":
		c.BaseURL, c.AuthURL, c.TokenURL = Dida365BaseURL, Dida365AuthURL, Dida365TokenURL
	default:
		return errors.Newf("unknown provider %q (supported: ticktick, dida365)", provider)
	}
	return nil
}

// values renders the credentials as key/value pairs. Empty fields map to "".
func (c Credentials) values() map[string]string {
	return map[string]string{
		KeyClientID:     c.ClientID,
		KeyClientSecret: c.ClientSecret,
		KeyAccessToken:  c.AccessToken,
		KeyRefreshToken: c.RefreshToken,
		KeyBaseURL:      c.BaseURL,
		KeyAuthURL:      c.AuthURL,
		KeyTokenURL:     c.TokenURL,
	}
}

// fromValues builds credentials from a key/value map, ignoring unknown keys.
func fromValues(m map[string]string) Credentials {
	return Credentials{
		ClientID:     m[KeyClientID],
		ClientSecret: m[KeyClientSecret],
		AccessToken:  m[KeyAccessToken],
		RefreshToken: m[KeyRefreshToken],
		BaseURL:      m[KeyBaseURL],
		AuthURL:      m[KeyAuthURL],
		TokenURL:     m[KeyTokenURL],
	}
}

// Store loads and saves credentials.
// Implementations are injected into the token manager and the CLI.
type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
}
