// Package client is the data-fetching client on top of the link and the
// normalized cache: cache-first watched queries and subscription updates
// merged into them.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ganot/ticklink/internal/graphql"
	"github.com/ganot/ticklink/internal/link"
	"github.com/jonboulle/clockwork"
)

// ErrNotQuery is returned when WatchQuery is given a non-query operation.
var ErrNotQuery = errors.New("watched operation must be a query")

// FetchPolicy selects where a watched query gets its first result.
type FetchPolicy string

const (
	// CacheFirst serves from the cache when it holds every selected field.
	CacheFirst FetchPolicy = "cache-first"
	// NetworkOnly always dispatches through the link.
	NetworkOnly FetchPolicy = "network-only"
)

// Link dispatches operations.
type Link interface {
	Dispatch(ctx context.Context, req graphql.Request, obs link.Observer) *link.Subscription
}

// Classifier determines the operation a request selects.
type Classifier interface {
	Classify(req graphql.Request) (graphql.Operation, error)
}

// Cache is the normalized result store.
type Cache interface {
	ReadQuery(ctx context.Context, fields []string) (map[string]any, bool, error)
	WriteQuery(ctx context.Context, data map[string]any) error
	Watch(fields []string) (<-chan map[string]any, func())
}

// Options configures a Client.
type Options struct {
	// SSRForceFetchDelay is the window after creation during which
	// network-only queries are served cache-first.
	SSRForceFetchDelay time.Duration
	Clock              clockwork.Clock
}

// Client watches queries through the cache.
type Client struct {
	link       Link
	classifier Classifier
	cache      Cache
	clock      clockwork.Clock
	createdAt  time.Time
	ssrDelay   time.Duration
	logger     *slog.Logger
}

// New creates a client. The SSR force-fetch window starts now.
func New(l Link, classifier Classifier, cache Cache, opts Options, logger *slog.Logger) *Client {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		link:       l,
		classifier: classifier,
		cache:      cache,
		clock:      opts.Clock,
		createdAt:  opts.Clock.Now(),
		ssrDelay:   opts.SSRForceFetchDelay,
		logger:     logger,
	}
}

// WatchQuery starts watching req. The watcher emits the cached data for the
// query's fields, and every later cache write that touches them.
func (c *Client) WatchQuery(ctx context.Context, req graphql.Request, policy FetchPolicy) (*QueryWatcher, error) {
	op, err := c.classifier.Classify(req)
	if err != nil {
		return nil, err
	}
	if op.Kind != graphql.KindQuery {
		return nil, fmt.Errorf("%w: got %s", ErrNotQuery, op.Kind)
	}

	fields := make([]string, 0, len(op.Fields))
	for _, f := range op.Fields {
		fields = append(fields, f.ResponseKey())
	}

	w := newQueryWatcher(ctx, c, fields)

	if policy == NetworkOnly && c.clock.Since(c.createdAt) < c.ssrDelay {
		c.logger.Debug("inside ssr force fetch window, using cache", "operation", op.Name)
		policy = CacheFirst
	}

	if policy != NetworkOnly {
		data, ok, err := c.cache.ReadQuery(ctx, fields)
		if err != nil {
			w.Close()
			return nil, err
		}
		if ok {
			c.logger.Debug("query served from cache", "operation", op.Name)
			w.publish(data)
			return w, nil
		}
	}

	w.fetch(req)
	return w, nil
}
