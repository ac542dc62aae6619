package credentials

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// MissingCredentialsError is returned by Load when no credential source exists.
type MissingCredentialsError struct {
	Path string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials: %s not found and no %s variables set", e.Path, "TICKTICK_*")
}

// IOError wraps a failure to read or write the credential file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("credential %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func newMissing(path string) error {
	return errors.WithHint(&MissingCredentialsError{Path: path},
		"run `ticktick-mcp auth --client-id ... --client-secret ...` to create it")
}

func newIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
