package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/ganot/ticklink/internal/graphql"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	Path         []string `json:"path,omitempty"`
	RecoveryHint string   `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unrecognized errors map to
// INTERNAL_ERROR.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var gqlErr *graphql.Error
	switch {
	case errors.As(err, &gqlErr) && gqlErr.Code == graphql.CodeValidation:
		return &APIError{Code: string(gqlErr.Code), Message: gqlErr.Message, RecoveryHint: "Check the document against ticklink://docs/schema"}
	case errors.As(err, &gqlErr) && gqlErr.Code == graphql.CodeResolution:
		return &APIError{Code: string(gqlErr.Code), Message: gqlErr.Message, Path: gqlErr.Path}
	case errors.Is(err, activity.ErrInvalidInput), errors.Is(err, cache.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &APIError{Code: "CANCELLED", Message: err.Error(), RecoveryHint: "Request fewer emissions"}
	default:
		return &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}
