package ticktick_tools

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/ticktick-mcp/internal/auth"
	"github.com/teemow/ticktick-mcp/internal/credentials"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// Error kinds as shown to the calling client.
const (
	kindReauthorization = "reauthorization required"
	kindConfiguration   = "configuration error"
	kindCredentials     = "missing credentials"
	kindCredentialIO    = "credential storage error"
	kindAuthorization   = "authorization failed"
	kindTokenExchange   = "token exchange failed"
	kindRemoteAPI       = "remote API error"
	kindValidation      = "validation error"
	kindInternal        = "error"
)

// errorKind classifies err by the first matching error type in its chain.
func errorKind(err error) string {
	var (
		reauth   *auth.ReauthorizationRequiredError
		config   *auth.ConfigurationError
		missing  *credentials.MissingCredentialsError
		ioErr    *credentials.IOError
		timeout  *auth.CallbackTimeoutError
		callback *auth.CallbackError
		exchange *auth.TokenExchangeError
		remote   *ticktick.RemoteAPIError
		invalid  *ticktick.ValidationError
	)
	switch {
	case errors.As(err, &reauth):
		return kindReauthorization
	case errors.As(err, &config):
		return kindConfiguration
	case errors.As(err, &missing):
		return kindCredentials
	case errors.As(err, &ioErr):
		return kindCredentialIO
	case errors.As(err, &timeout), errors.As(err, &callback):
		return kindAuthorization
	case errors.As(err, &exchange):
		return kindTokenExchange
	case errors.As(err, &remote):
		return kindRemoteAPI
	case errors.As(err, &invalid):
		return kindValidation
	default:
		return kindInternal
	}
}

// formatError renders err as "<kind>: <message>" followed by its hints.
func formatError(err error) string {
	kind := errorKind(err)
	msg := strings.TrimPrefix(err.Error(), kind+": ")

	var b strings.Builder
	b.WriteString(kind)
	b.WriteString(": ")
	b.WriteString(msg)
	if hints := errors.FlattenHints(err); hints != "" {
		b.WriteString("\nhint: ")
		b.WriteString(hints)
	}
	return b.String()
}

// toolError turns a failed action into a tool error result.
func toolError(action string, err error) *mcp.CallToolResult {
	kind := errorKind(err)
	msg := strings.TrimPrefix(formatError(err), kind+": ")
	return mcp.NewToolResultError(fmt.Sprintf("%s: failed to %s: %s", kind, action, msg))
}
