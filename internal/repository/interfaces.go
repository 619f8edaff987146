package repository

import (
	"context"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
)

// ActivityRepository manages session journal persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// CacheRepository manages normalized cache field persistence
type CacheRepository interface {
	PutFields(ctx context.Context, entityID string, fields map[string]any) error
	GetFields(ctx context.Context, entityID string, names []string) (map[string]any, error)
	List(ctx context.Context) (cache.Snapshot, error)
	Reset(ctx context.Context) error
}
