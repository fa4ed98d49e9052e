// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel errors for failures that are absorbed per entry.
var (
	// ErrMissingSourceURL is returned when no source list location was supplied
	ErrMissingSourceURL = stderrors.New("missing source url")

	// ErrInvalidURL marks a candidate line that is not an absolute URL
	ErrInvalidURL = stderrors.New("invalid url")

	// ErrDecode marks malformed percent-encoding
	ErrDecode = stderrors.New("malformed percent-encoding")
)

// ConfigurationError is returned when a request cannot be turned into a usable
// configuration. It is terminal for the invocation.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a configuration error for the given field
func NewConfigurationError(field, message string, cause error) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message, Cause: cause}
}

// SourceFetchError is returned when the source list cannot be retrieved.
// StatusCode is zero when no response was received.
type SourceFetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *SourceFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to fetch source: Status %d", e.StatusCode)
	}
	if e.Cause != nil {
		return "Failed to fetch source: " + e.Cause.Error()
	}
	return "Failed to fetch source"
}

func (e *SourceFetchError) Unwrap() error {
	return e.Cause
}

// IsConfigurationError reports whether err carries a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return stderrors.As(err, &cfgErr)
}

// AsSourceFetchError extracts a SourceFetchError from err
func AsSourceFetchError(err error) (*SourceFetchError, bool) {
	var fetchErr *SourceFetchError
	if stderrors.As(err, &fetchErr) {
		return fetchErr, true
	}
	return nil, false
}

// Is is a re-export of the standard library function so callers importing this
// package do not need a second alias.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
