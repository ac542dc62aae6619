package ticktick

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RemoteAPIError is a non-2xx response from the TickTick open API.
type RemoteAPIError struct {
	Status  int
	Code    string
	Message string
	Method  string
	Path    string
}

func (e *RemoteAPIError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	return fmt.Sprintf("ticktick API %s %s returned %d: %s", e.Method, e.Path, e.Status, msg)
}

// NotFound reports whether the provider answered 404.
func (e *RemoteAPIError) NotFound() bool { return e.Status == 404 }

// ValidationError describes malformed input, such as an unknown priority.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Message)
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// apiErrorBody is the provider's error payload.
type apiErrorBody struct {
	ErrorID      string `json:"errorId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func newRemoteAPIError(method, path string, status int, body []byte) *RemoteAPIError {
	e := &RemoteAPIError{Status: status, Method: method, Path: path}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && (parsed.ErrorCode != "" || parsed.ErrorMessage != "") {
		e.Code = parsed.ErrorCode
		e.Message = parsed.ErrorMessage
		return e
	}

	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = fmt.Sprintf("status %d", status)
	}
	return e
}
