package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

// ConfigurationError reports a missing or invalid OAuth client setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// CallbackTimeoutError is returned when no callback arrives in time.
type CallbackTimeoutError struct {
	Timeout time.Duration
}

func (e *CallbackTimeoutError) Error() string {
	return fmt.Sprintf("no authorization callback received within %s", e.Timeout)
}

// CallbackError is returned when the provider redirects back with an error
// instead of a code, or the callback is malformed.
type CallbackError struct {
	Code        string
	Description string
}

func (e *CallbackError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization callback failed: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization callback failed: %s", e.Code)
}

// TokenExchangeError is returned when the token endpoint rejects a request
// or cannot be reached.
type TokenExchangeError struct {
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *TokenExchangeError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("token endpoint rejected request (status %d): %s %s", e.Status, e.Code, e.Description)
	case e.Status != 0:
		return fmt.Sprintf("token endpoint returned status %d", e.Status)
	default:
		return fmt.Sprintf("token request failed: %v", e.Err)
	}
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// ReauthorizationRequiredError means the refresh token is gone, revoked or
// expired and the full authorization flow must be run again.
type ReauthorizationRequiredError struct {
	Reason string
	Err    error
}

func (e *ReauthorizationRequiredError) Error() string {
	return fmt.Sprintf("reauthorization required: %s", e.Reason)
}

func (e *ReauthorizationRequiredError) Unwrap() error { return e.Err }

const reauthHint = "run `ticktick-mcp auth` to authorize again"

func newReauthRequired(reason string, cause error) error {
	return errors.WithHint(&ReauthorizationRequiredError{Reason: reason, Err: cause}, reauthHint)
}

// tokenExchangeError converts an oauth2 failure into a TokenExchangeError.
func tokenExchangeError(err error) *TokenExchangeError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		te := &TokenExchangeError{
			Code:        re.ErrorCode,
			Description: re.ErrorDescription,
			Err:         err,
		}
		if re.Response != nil {
			te.Status = re.Response.StatusCode
		}
		return te
	}
	return &TokenExchangeError{Err: err}
}

// isRejection reports whether the token endpoint refused the grant itself,
// as opposed to a transport or server failure.
func (e *TokenExchangeError) isRejection() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnauthorized || e.Code == "invalid_grant"
}
