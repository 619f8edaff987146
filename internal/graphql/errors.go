package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes execution failures.
type ErrorCode string

const (
	// CodeValidation indicates the document does not parse or does not match
	// a known operation shape.
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// CodeResolution indicates a field resolver failed.
	CodeResolution ErrorCode = "RESOLUTION_ERROR"
)

// Error is the failure reported for an operation.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Path is the response path of the failing field, set for resolution errors.
	Path []string `json:"path,omitempty"`
	Err  error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, strings.Join(e.Path, "."))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...any) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewResolutionError wraps a resolver failure at the given response path.
func NewResolutionError(path []string, err error) *Error {
	msg := "resolver failed"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    CodeResolution,
		Message: msg,
		Path:    path,
		Err:     err,
	}
}

// IsValidationError reports whether err is, or wraps, a validation error.
func IsValidationError(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == CodeValidation
	}
	return false
}

// IsResolutionError reports whether err is, or wraps, a resolution error.
func IsResolutionError(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == CodeResolution
	}
	return false
}
