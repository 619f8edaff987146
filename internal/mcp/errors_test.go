package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"validation", graphql.NewValidationError("cannot query field %q", "tock"), "VALIDATION_ERROR"},
		{"resolution", graphql.NewResolutionError([]string{"tick"}, errors.New("boom")), "RESOLUTION_ERROR"},
		{"wrapped validation", fmt.Errorf("executing: %w", graphql.NewValidationError("bad")), "VALIDATION_ERROR"},
		{"invalid input", activity.ErrInvalidInput, "INVALID_INPUT"},
		{"deadline", context.DeadlineExceeded, "CANCELLED"},
		{"other", errors.New("disk on fire"), "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, MapError(tt.err).Code)
		})
	}

	apiErr := MapError(graphql.NewResolutionError([]string{"now"}, errors.New("boom")))
	require.Equal(t, []string{"now"}, apiErr.Path)
}
