package credentials

import (
	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service name secrets are stored under.
const KeyringService = "ticktick-mcp"

// secretKeys are kept in the keyring instead of the wrapped store.
var secretKeys = []string{KeyClientSecret, KeyAccessToken, KeyRefreshToken}

// KeyringStore keeps the client secret and tokens in the OS keyring and the
// remaining fields in another Store.
type KeyringStore struct {
	base    Store
	service string
}

// NewKeyringStore wraps base. Only non-secret fields reach base on Save.
func NewKeyringStore(base Store) *KeyringStore {
	return &KeyringStore{base: base, service: KeyringService}
}

// Load merges the wrapped store with the keyring secrets.
// A missing wrapped store is tolerated when the keyring holds at least one secret.
func (s *KeyringStore) Load() (Credentials, error) {
	creds, baseErr := s.base.Load()
	var missing *MissingCredentialsError
	if baseErr != nil && !errors.As(baseErr, &missing) {
		return Credentials{}, baseErr
	}

	values := creds.values()
	found := false
	for _, key := range secretKeys {
		secret, err := keyring.Get(s.service, key)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				continue
			}
			return Credentials{}, newIOError("keyring read", key, err)
		}
		if secret != "" {
			values[key] = secret
			found = true
		}
	}

	if baseErr != nil && !found {
		return Credentials{}, baseErr
	}
	return fromValues(values), nil
}

// Save writes secrets to the keyring and everything else to the wrapped store.
func (s *KeyringStore) Save(c Credentials) error {
	values := c.values()
	for _, key := range secretKeys {
		v := values[key]
		if v == "" {
			if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
				return newIOError("keyring delete", key, err)
			}
			continue
		}
		if err := keyring.Set(s.service, key, v); err != nil {
			return newIOError("keyring write", key, err)
		}
	}

	public := c
	public.ClientSecret = ""
	public.AccessToken = ""
	public.RefreshToken = ""
	return s.base.Save(public)
}
