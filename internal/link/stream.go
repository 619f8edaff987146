package link

import (
	"context"

	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
)

// Event is one emission of a channel subscription. Exactly one of Result,
// Err or Complete is set.
type Event struct {
	Result   *engine.Result
	Err      error
	Complete bool
}

// Subscribe dispatches req and streams its emissions on the returned channel.
// The channel is closed when the session ends. Cancelling ctx unsubscribes;
// the receiver must keep draining until the channel closes or ctx is done.
func (l *Link) Subscribe(ctx context.Context, req graphql.Request) (*Subscription, <-chan Event) {
	events := make(chan Event)
	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	sub := l.Dispatch(ctx, req, ObserverFuncs{
		Next:     func(r *engine.Result) { send(Event{Result: r}) },
		Error:    func(err error) { send(Event{Err: err}) },
		Complete: func() { send(Event{Complete: true}) },
	})

	go func() {
		<-sub.Done()
		close(events)
	}()
	return sub, events
}
