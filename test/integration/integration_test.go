package integration_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganot/ticklink/internal/client"
	"github.com/ganot/ticklink/internal/demo"
	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/ganot/ticklink/internal/link"
	"github.com/ganot/ticklink/internal/sqlite"
	"github.com/ganot/ticklink/internal/tick"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dbPath string
	db     *sqlite.DB

	ticks       *tick.Source
	parser      *graphql.Parser
	link        *link.Link
	cacheSvc    *cache.Service
	activitySvc *activity.Service
	client      *client.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ticklink.db")
	env := openTestEnv(t, dbPath)
	t.Cleanup(env.close)
	return env
}

func openTestEnv(t *testing.T, dbPath string) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	cacheSvc := cache.NewService(sqlite.NewCacheRepository(db), nil)
	require.NoError(t, cacheSvc.Restore(ctx, cache.Snapshot{
		cache.RootQueryID: {"__typename": "Query", "tick": 0},
	}))

	ticks := tick.New(nil, 10*time.Millisecond, nil)
	require.NoError(t, ticks.Start(ctx))

	parser, err := graphql.NewParser(32)
	require.NoError(t, err)

	l, err := link.New(link.Config{
		Executor:     engine.New(engine.NewTickSchema(ticks), parser, nil),
		Classifier:   parser,
		StartupDelay: 5 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Activity:     activitySvc,
	})
	require.NoError(t, err)

	return &testEnv{
		dbPath:      dbPath,
		db:          db,
		ticks:       ticks,
		parser:      parser,
		link:        l,
		cacheSvc:    cacheSvc,
		activitySvc: activitySvc,
		client:      client.New(l, parser, cacheSvc, client.Options{}, nil),
	}
}

func (e *testEnv) close() {
	e.ticks.Stop()
	_ = e.db.Close()
}

func (e *testEnv) activityOfType(t *testing.T, typ activity.ActivityType) []activity.ActivityEntry {
	t.Helper()
	entries, err := e.activitySvc.GetRecentActivity(context.Background(), activity.ListActivityOptions{ActivityType: &typ})
	require.NoError(t, err)
	return entries
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func maxRenderedTick(out string) float64 {
	highest := -1.0
	for _, line := range strings.Split(out, "\n") {
		value, ok := strings.CutPrefix(line, "tick: ")
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > highest {
			highest = v
		}
	}
	return highest
}

func TestIntegration_DemoToggleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out := &syncBuffer{}
	app := demo.New(env.client, out, nil)
	require.NoError(t, app.Start(ctx))
	defer app.Stop()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "tick: 0")
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return maxRenderedTick(out.String()) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, app.Toggle(ctx))
	require.False(t, app.Showing())
	require.Eventually(t, func() bool {
		return len(env.activityOfType(t, activity.TypeUnsubscribed)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, app.Toggle(ctx))
	require.True(t, app.Showing())
	require.Eventually(t, func() bool {
		return len(env.activityOfType(t, activity.TypeSessionStarted)) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	app.Stop()
	require.Eventually(t, func() bool {
		return len(env.activityOfType(t, activity.TypeUnsubscribed)) == 2
	}, 5*time.Second, 10*time.Millisecond)

	unsubscribed := env.activityOfType(t, activity.TypeUnsubscribed)
	require.NotEqual(t, unsubscribed[0].SessionID, unsubscribed[1].SessionID)
	for _, entry := range unsubscribed {
		require.Equal(t, "Ticked", entry.OperationName)
	}
}

func TestIntegration_SubscriptionWritesThroughCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	w, err := env.client.WatchQuery(ctx, demo.TickQuery, client.CacheFirst)
	require.NoError(t, err)
	defer w.Close()

	stop := w.SubscribeToMore(client.SubscribeToMoreOptions{
		Request:     demo.TickedSubscription,
		UpdateQuery: demo.MergeTicked,
	})
	defer stop()

	require.Eventually(t, func() bool {
		data, complete, err := env.cacheSvc.ReadQuery(ctx, []string{"tick"})
		if err != nil || !complete {
			return false
		}
		tick, ok := data["tick"].(float64)
		return ok && tick >= 2
	}, 5*time.Second, 10*time.Millisecond)

	snap, err := env.cacheSvc.Extract(ctx)
	require.NoError(t, err)
	require.Equal(t, "Query", snap[cache.RootQueryID]["__typename"])
	require.NoError(t, w.Err())
}

func TestIntegration_IndependentSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	firstCtx, stopFirst := context.WithCancel(ctx)
	_, first := env.link.Subscribe(firstCtx, demo.TickedSubscription)
	_, second := env.link.Subscribe(ctx, demo.TickedSubscription)

	receive := func(events <-chan link.Event) int64 {
		t.Helper()
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream closed early")
			require.NoError(t, ev.Err)
			require.NotNil(t, ev.Result)
			return ev.Result.Data["ticked"].(int64)
		case <-ctx.Done():
			t.Fatal("timed out waiting for emission")
			return 0
		}
	}

	prevFirst, prevSecond := int64(-1), int64(-1)
	for i := 0; i < 3; i++ {
		v := receive(first)
		require.GreaterOrEqual(t, v, prevFirst)
		prevFirst = v

		v = receive(second)
		require.GreaterOrEqual(t, v, prevSecond)
		prevSecond = v
	}

	stopFirst()
	for range first {
	}

	for i := 0; i < 3; i++ {
		v := receive(second)
		require.GreaterOrEqual(t, v, prevSecond)
		prevSecond = v
	}
}

func TestIntegration_JournalSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ticklink.db")
	env := openTestEnv(t, dbPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, events := env.link.Subscribe(ctx, demo.TickQuery)
	var kinds []string
	for ev := range events {
		switch {
		case ev.Err != nil:
			t.Fatalf("unexpected error: %v", ev.Err)
		case ev.Complete:
			kinds = append(kinds, "complete")
		default:
			kinds = append(kinds, "next")
		}
	}
	require.Equal(t, []string{"next", "complete"}, kinds)

	entries, err := env.activitySvc.GetRecentActivity(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	sessionID := entries[0].SessionID
	env.close()

	reopened := openTestEnv(t, dbPath)
	defer reopened.close()

	entries, err = reopened.activitySvc.GetRecentActivity(ctx, activity.ListActivityOptions{SessionID: &sessionID})
	require.NoError(t, err)

	var types []activity.ActivityType
	for i := len(entries) - 1; i >= 0; i-- {
		types = append(types, entries[i].ActivityType)
	}
	require.Equal(t, []activity.ActivityType{
		activity.TypeSessionStarted,
		activity.TypeNext,
		activity.TypeComplete,
	}, types)
	require.Equal(t, "Tick", entries[0].OperationName)
	require.Equal(t, "query", entries[0].OperationKind)
}
