package client

import (
	"context"
	"sync"

	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/ganot/ticklink/internal/link"
)

// UpdateQueryFunc merges subscription data into the previous query data.
// Returning nil leaves the cache unchanged.
type UpdateQueryFunc func(prev, subscriptionData map[string]any) map[string]any

// SubscribeToMoreOptions configures QueryWatcher.SubscribeToMore.
type SubscribeToMoreOptions struct {
	Request     graphql.Request
	UpdateQuery UpdateQueryFunc
	OnError     func(error)
}

// QueryWatcher streams the data of one watched query.
type QueryWatcher struct {
	ctx    context.Context
	client *Client
	fields []string

	updates   chan map[string]any
	stopWatch func()
	forwarded chan struct{}

	mu      sync.Mutex
	current map[string]any
	err     error
	subs    []*link.Subscription
	closed  bool
}

func newQueryWatcher(ctx context.Context, c *Client, fields []string) *QueryWatcher {
	w := &QueryWatcher{
		ctx:       ctx,
		client:    c,
		fields:    fields,
		updates:   make(chan map[string]any, 1),
		forwarded: make(chan struct{}),
	}

	watch, stop := c.cache.Watch(fields)
	w.stopWatch = stop
	go func() {
		defer close(w.forwarded)
		for data := range watch {
			w.publish(data)
		}
	}()
	return w
}

// Updates delivers the newest data. A slow reader only sees the latest value.
// The channel is closed by Close.
func (w *QueryWatcher) Updates() <-chan map[string]any {
	return w.updates
}

// Current returns the latest data, or nil before the first result.
func (w *QueryWatcher) Current() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Err returns the error of the initial fetch, if it failed.
func (w *QueryWatcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// SubscribeToMore dispatches a subscription whose results are merged into
// this query through UpdateQuery and written back to the cache. The returned
// func unsubscribes; Close also unsubscribes it.
func (w *QueryWatcher) SubscribeToMore(opts SubscribeToMoreOptions) func() {
	c := w.client
	logger := c.logger.With("operation", opts.Request.OperationName)

	sub := c.link.Dispatch(w.ctx, opts.Request, link.ObserverFuncs{
		Next: func(result *engine.Result) {
			if opts.UpdateQuery == nil {
				return
			}
			prev, ok, err := c.cache.ReadQuery(w.ctx, w.fields)
			if err != nil || !ok {
				prev = w.Current()
			}
			merged := opts.UpdateQuery(prev, result.Data)
			if merged == nil {
				return
			}
			if err := c.cache.WriteQuery(w.ctx, merged); err != nil {
				logger.Warn("failed to write subscription update", "error", err)
			}
		},
		Error: func(err error) {
			logger.Warn("subscription failed", "error", err)
			if opts.OnError != nil {
				opts.OnError(err)
			}
		},
	})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		sub.Unsubscribe()
		return func() {}
	}
	w.subs = append(w.subs, sub)
	w.mu.Unlock()

	return sub.Unsubscribe
}

// Close stops the watcher and every subscription started from it.
func (w *QueryWatcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	subs := w.subs
	w.subs = nil
	w.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	w.stopWatch()
	<-w.forwarded

	w.mu.Lock()
	close(w.updates)
	w.mu.Unlock()
}

func (w *QueryWatcher) fetch(req graphql.Request) {
	c := w.client
	sub := c.link.Dispatch(w.ctx, req, link.ObserverFuncs{
		Next: func(result *engine.Result) {
			if err := c.cache.WriteQuery(w.ctx, result.Data); err != nil {
				c.logger.Warn("failed to cache query result", "operation", req.OperationName, "error", err)
				w.publish(result.Data)
			}
		},
		Error: func(err error) {
			c.logger.Warn("query failed", "operation", req.OperationName, "error", err)
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
		},
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		sub.Unsubscribe()
		return
	}
	w.subs = append(w.subs, sub)
}

func (w *QueryWatcher) publish(data map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.current = data
	select {
	case <-w.updates:
	default:
	}
	w.updates <- data
}
