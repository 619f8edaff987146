package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Service is the normalized result cache consumed by the client. Root query
// fields are stored under RootQueryID; watchers are notified with the latest
// complete data for their selection after every write that touches it.
type Service struct {
	repo   Repository
	logger *slog.Logger

	mu       sync.Mutex
	nextID   int
	watchers map[int]*watcher
}

type watcher struct {
	fields []string
	ch     chan map[string]any
}

// NewService creates a new cache service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		watchers: make(map[int]*watcher),
	}
}

// Restore replaces the cache contents with snap.
func (s *Service) Restore(ctx context.Context, snap Snapshot) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("resetting cache: %w", err)
	}

	var touched []string
	for entityID, fields := range snap {
		if len(fields) == 0 {
			continue
		}
		if err := s.repo.PutFields(ctx, entityID, fields); err != nil {
			return fmt.Errorf("restoring %s: %w", entityID, err)
		}
		if entityID == RootQueryID {
			for name := range fields {
				touched = append(touched, name)
			}
		}
	}

	s.logger.Debug("cache restored", "entities", len(snap))
	s.notify(ctx, touched)
	return nil
}

// WriteQuery merges root query data into the cache.
func (s *Service) WriteQuery(ctx context.Context, data map[string]any) error {
	if len(data) == 0 {
		return ErrInvalidInput
	}
	if err := s.repo.PutFields(ctx, RootQueryID, data); err != nil {
		return fmt.Errorf("writing query: %w", err)
	}

	touched := make([]string, 0, len(data))
	for name := range data {
		touched = append(touched, name)
	}
	s.notify(ctx, touched)
	return nil
}

// ReadQuery returns the cached values for fields. ok is false unless every
// field is present.
func (s *Service) ReadQuery(ctx context.Context, fields []string) (map[string]any, bool, error) {
	values, err := s.repo.GetFields(ctx, RootQueryID, fields)
	if err != nil {
		return nil, false, fmt.Errorf("reading query: %w", err)
	}
	for _, name := range fields {
		if _, ok := values[name]; !ok {
			return nil, false, nil
		}
	}
	return values, true, nil
}

// Extract returns the full cache contents.
func (s *Service) Extract(ctx context.Context) (Snapshot, error) {
	snap, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("extracting cache: %w", err)
	}
	return snap, nil
}

// Watch returns a channel that receives the latest complete data for fields
// whenever a write touches one of them. Only the newest value is buffered.
// The returned func stops the watch and closes the channel.
func (s *Service) Watch(fields []string) (<-chan map[string]any, func()) {
	w := &watcher{
		fields: append([]string(nil), fields...),
		ch:     make(chan map[string]any, 1),
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = w
	s.mu.Unlock()

	var once sync.Once
	return w.ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			close(w.ch)
			s.mu.Unlock()
		})
	}
}

func (s *Service) notify(ctx context.Context, touched []string) {
	if len(touched) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.watchers {
		if !intersects(w.fields, touched) {
			continue
		}
		data, ok, err := s.ReadQuery(ctx, w.fields)
		if err != nil {
			s.logger.Warn("cache watch read failed", "error", err)
			continue
		}
		if !ok {
			continue
		}
		// Drop the stale value, if any, so the watcher only sees the newest.
		select {
		case <-w.ch:
		default:
		}
		w.ch <- data
	}
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
