package link

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingExecutor is returned by New when no executor is configured.
	ErrMissingExecutor = errors.New("link executor is required")

	// ErrMissingClassifier is returned by New when no classifier is configured.
	ErrMissingClassifier = errors.New("link classifier is required")

	// ErrUnknownPollErrorPolicy is returned for an unrecognized policy name.
	ErrUnknownPollErrorPolicy = errors.New("unknown poll error policy")
)

// PollErrorPolicy decides what a streaming session does when a periodic
// re-execution fails.
type PollErrorPolicy string

const (
	// PollErrorStop reports the error through OnError and ends the session.
	PollErrorStop PollErrorPolicy = "stop"
	// PollErrorContinue logs the error and keeps polling.
	PollErrorContinue PollErrorPolicy = "continue"
)

// ParsePollErrorPolicy parses a policy name. An empty name selects PollErrorStop.
func ParsePollErrorPolicy(name string) (PollErrorPolicy, error) {
	switch PollErrorPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PollErrorStop:
		return PollErrorStop, nil
	case PollErrorContinue:
		return PollErrorContinue, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPollErrorPolicy, name)
	}
}
