package cache

import "context"

// Repository provides storage for normalized cache fields.
type Repository interface {
	PutFields(ctx context.Context, entityID string, fields map[string]any) error
	GetFields(ctx context.Context, entityID string, names []string) (map[string]any, error)
	List(ctx context.Context) (Snapshot, error)
	Reset(ctx context.Context) error
}
