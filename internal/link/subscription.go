package link

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
)

// State is the lifecycle position of a subscription.
type State int32

const (
	// StatePending covers the startup delay and the first execution.
	StatePending State = iota
	// StateStreaming is entered once a subscription has delivered its first result.
	StateStreaming
	// StateDone is terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Subscription is one dispatched session.
//
// Emissions are suppressed once Unsubscribe has been called: a result that
// was executed but not yet handed to the observer is dropped. The check runs
// immediately before each callback, so at most one in-flight emission whose
// check passed just before Unsubscribe may still be delivered, possibly after
// Unsubscribe returns. A callback that had already started may also still be
// running when Unsubscribe returns. Nothing is delivered after that one.
type Subscription struct {
	id     string
	link   *Link
	req    graphql.Request
	obs    Observer
	logger *slog.Logger

	kind   graphql.Kind
	name   string
	state  atomic.Int32
	closed atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
}

// ID returns the session id.
func (s *Subscription) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Subscription) State() State {
	return State(s.state.Load())
}

// Done is closed when the session goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops the session. It is safe to call more than once, from any
// goroutine, including from inside an observer callback.
func (s *Subscription) Unsubscribe() {
	if s.closed.Swap(true) {
		return
	}
	s.state.Store(int32(StateDone))
	s.cancel()
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer s.cancel()
	defer s.state.Store(int32(StateDone))

	l := s.link
	s.record(ctx, activity.TypeSessionStarted, "session started", nil)

	timer := l.clock.NewTimer(l.startupDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		s.stopped(ctx)
		return
	case <-timer.Chan():
	}

	op, err := l.classifier.Classify(s.req)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.kind = op.Kind
	s.name = op.Name
	s.logger = s.logger.With("operation", s.operationName(), "kind", op.Kind.String())

	result, err := l.executor.Execute(ctx, s.req)
	if err != nil {
		if ctx.Err() != nil {
			s.stopped(ctx)
			return
		}
		s.fail(ctx, err)
		return
	}

	if !op.Kind.Streaming() {
		if !s.next(ctx, result) {
			s.stopped(ctx)
			return
		}
		s.complete(ctx)
		return
	}

	s.state.CompareAndSwap(int32(StatePending), int32(StateStreaming))
	if !s.next(ctx, result) {
		s.stopped(ctx)
		return
	}
	s.poll(ctx)
}

func (s *Subscription) poll(ctx context.Context) {
	l := s.link
	ticker := l.clock.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopped(ctx)
			return
		case <-ticker.Chan():
		}

		result, err := l.executor.Execute(ctx, s.req)
		if err != nil {
			if ctx.Err() != nil {
				s.stopped(ctx)
				return
			}
			if l.policy == PollErrorContinue {
				s.logger.Warn("poll execution failed, continuing", "error", err)
				s.record(ctx, activity.TypePollError, "poll execution failed", map[string]any{"error": err.Error()})
				continue
			}
			s.fail(ctx, err)
			return
		}

		if !s.next(ctx, result) {
			s.stopped(ctx)
			return
		}
	}
}

// deliverable reports whether the observer may still be called. It is
// checked immediately before every callback.
func (s *Subscription) deliverable(ctx context.Context) bool {
	return !s.closed.Load() && ctx.Err() == nil
}

func (s *Subscription) next(ctx context.Context, result *engine.Result) bool {
	if !s.deliverable(ctx) {
		return false
	}
	s.obs.OnNext(result)
	s.record(ctx, activity.TypeNext, "emitted result", result.Data)
	return true
}

func (s *Subscription) fail(ctx context.Context, err error) {
	if !s.deliverable(ctx) {
		s.stopped(ctx)
		return
	}
	s.logger.Debug("session failed", "error", err)
	s.obs.OnError(err)
	s.record(ctx, activity.TypeError, "session failed", map[string]any{"error": err.Error()})
}

func (s *Subscription) complete(ctx context.Context) {
	if !s.deliverable(ctx) {
		s.stopped(ctx)
		return
	}
	s.obs.OnComplete()
	s.record(ctx, activity.TypeComplete, "session completed", nil)
}

func (s *Subscription) stopped(ctx context.Context) {
	s.logger.Debug("session unsubscribed")
	s.record(ctx, activity.TypeUnsubscribed, "session unsubscribed", nil)
}

// operationName prefers the name of the classified operation, so requests
// that leave OperationName empty are still journaled by name.
func (s *Subscription) operationName() string {
	if s.name != "" {
		return s.name
	}
	return s.req.OperationName
}

func (s *Subscription) record(ctx context.Context, typ activity.ActivityType, summary string, details any) {
	journal := s.link.activity
	if journal == nil {
		return
	}

	entry := &activity.ActivityEntry{
		SessionID:     s.id,
		OperationName: s.operationName(),
		ActivityType:  typ,
		Summary:       summary,
	}
	if s.kind != 0 {
		entry.OperationKind = s.kind.String()
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		}
	}

	// The journal outlives the session context.
	if err := journal.LogActivity(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to record session activity", "type", typ, "error", err)
	}
}
