package mocks

import (
	"context"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CacheRepository is a mock for repository.CacheRepository.
type CacheRepository struct {
	mock.Mock
}

func (m *CacheRepository) PutFields(ctx context.Context, entityID string, fields map[string]any) error {
	args := m.Called(ctx, entityID, fields)
	return args.Error(0)
}

func (m *CacheRepository) GetFields(ctx context.Context, entityID string, names []string) (map[string]any, error) {
	args := m.Called(ctx, entityID, names)
	if fields, ok := args.Get(0).(map[string]any); ok {
		return fields, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CacheRepository) List(ctx context.Context) (cache.Snapshot, error) {
	args := m.Called(ctx)
	if snap, ok := args.Get(0).(cache.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CacheRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
