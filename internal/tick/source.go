// Package tick provides the process-owned tick counter that every query resolves against.
package tick

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrAlreadyStarted is returned when Start is called on a running source.
var ErrAlreadyStarted = errors.New("tick source already started")

// Source is a monotonic counter incremented once per interval.
//
// The counter has exactly one writer (the goroutine started by Start) and any
// number of readers through Current.
type Source struct {
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger

	count atomic.Int64

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped source. Call Start to begin counting.
func New(clock clockwork.Clock, interval time.Duration, logger *slog.Logger) *Source {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Start begins incrementing the counter. The source stops when ctx is
// cancelled or Stop is called.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	ticker := s.clock.NewTicker(s.interval)
	go s.run(runCtx, ticker)

	s.logger.Info("tick source started", "interval", s.interval)
	return nil
}

func (s *Source) run(ctx context.Context, ticker clockwork.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			n := s.count.Add(1)
			s.logger.Debug("tick", "value", n)
		}
	}
}

// Stop halts the counter and waits for the background goroutine to exit.
// It is safe to call more than once and on a source that never started.
func (s *Source) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Current returns the counter value.
func (s *Source) Current() int64 {
	return s.count.Load()
}
