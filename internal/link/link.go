// Package link dispatches operations to the query engine. Queries and
// mutations run once; subscriptions are turned into a polling stream that
// re-executes the same request on every period until unsubscribed.
package link

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultStartupDelay models the network round trip before the first execution.
	DefaultStartupDelay = 300 * time.Millisecond
	// DefaultPollInterval is the re-execution period of streaming sessions.
	DefaultPollInterval = time.Second
)

// Executor resolves one request.
type Executor interface {
	Execute(ctx context.Context, req graphql.Request) (*engine.Result, error)
}

// Classifier determines the kind of a request's main definition.
type Classifier interface {
	Classify(req graphql.Request) (graphql.Operation, error)
}

// Journal records session events.
type Journal interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// Config configures a Link. Executor and Classifier are required.
type Config struct {
	Executor        Executor
	Classifier      Classifier
	Clock           clockwork.Clock
	StartupDelay    time.Duration
	PollInterval    time.Duration
	PollErrorPolicy PollErrorPolicy
	Activity        Journal
	Logger          *slog.Logger
}

// Link dispatches requests. It is safe for concurrent use; sessions share
// nothing but the executor.
type Link struct {
	executor     Executor
	classifier   Classifier
	clock        clockwork.Clock
	startupDelay time.Duration
	pollInterval time.Duration
	policy       PollErrorPolicy
	activity     Journal
	logger       *slog.Logger
}

// New creates a link, filling unset durations, clock and policy with defaults.
func New(cfg Config) (*Link, error) {
	if cfg.Executor == nil {
		return nil, ErrMissingExecutor
	}
	if cfg.Classifier == nil {
		return nil, ErrMissingClassifier
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.StartupDelay <= 0 {
		cfg.StartupDelay = DefaultStartupDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollErrorPolicy == "" {
		cfg.PollErrorPolicy = PollErrorStop
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Link{
		executor:     cfg.Executor,
		classifier:   cfg.Classifier,
		clock:        cfg.Clock,
		startupDelay: cfg.StartupDelay,
		pollInterval: cfg.PollInterval,
		policy:       cfg.PollErrorPolicy,
		activity:     cfg.Activity,
		logger:       cfg.Logger,
	}, nil
}

// Dispatch starts a session for req and returns immediately. Every failure is
// reported through obs.OnError; Dispatch itself never fails. Cancelling ctx
// has the same effect as Unsubscribe.
func (l *Link) Dispatch(ctx context.Context, req graphql.Request, obs Observer) *Subscription {
	if obs == nil {
		obs = ObserverFuncs{}
	}

	sessCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		id:     uuid.NewString(),
		link:   l,
		req:    req,
		obs:    obs,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.logger = l.logger.With("session_id", s.id)

	go s.run(sessCtx)
	return s
}
