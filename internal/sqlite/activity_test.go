package sqlite

import (
	"context"
	"testing"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/repository"
	"github.com/stretchr/testify/require"
)

var _ repository.ActivityRepository = (*ActivityRepository)(nil)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	entry1 := &activity.ActivityEntry{
		SessionID:     "s1",
		OperationName: "Ticked",
		OperationKind: "subscription",
		ActivityType:  activity.TypeSessionStarted,
		Summary:       "subscription started",
	}
	entry2 := &activity.ActivityEntry{
		SessionID:     "s1",
		OperationName: "Ticked",
		OperationKind: "subscription",
		ActivityType:  activity.TypeNext,
		Summary:       "emitted result",
		Details:       `{"ticked":1}`,
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)
	require.False(t, entry1.CreatedAt.IsZero())

	entries, err := repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, `{"ticked":1}`, entries[0].Details)
	require.Equal(t, "Ticked", entries[0].OperationName)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	for _, e := range []*activity.ActivityEntry{
		{SessionID: "s1", ActivityType: activity.TypeNext, Summary: "one"},
		{SessionID: "s1", ActivityType: activity.TypeNext, Summary: "two"},
		{SessionID: "s1", ActivityType: activity.TypeComplete, Summary: "done"},
		{SessionID: "s2", ActivityType: activity.TypeNext, Summary: "other"},
	} {
		require.NoError(t, repo.Log(ctx, e))
	}

	sessionID := "s1"
	entries, err := repo.List(ctx, activity.ListActivityOptions{SessionID: &sessionID})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	next := activity.TypeNext
	entries, err = repo.List(ctx, activity.ListActivityOptions{SessionID: &sessionID, ActivityType: &next})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "two", entries[0].Summary)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "done", entries[0].Summary)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Offset: 3})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "one", entries[0].Summary)
}
