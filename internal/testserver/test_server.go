// Package testserver runs the MCP server in-process over in-memory
// transports, wired to real components.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/ganot/ticklink/internal/link"
	"github.com/ganot/ticklink/internal/mcp"
	"github.com/ganot/ticklink/internal/sqlite"
	"github.com/ganot/ticklink/internal/tick"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// Options tunes timings so tests run quickly on the real clock.
type Options struct {
	TickInterval    time.Duration
	StartupDelay    time.Duration
	PollInterval    time.Duration
	PollErrorPolicy link.PollErrorPolicy
}

// DefaultOptions returns timings an order of magnitude faster than production.
func DefaultOptions() Options {
	return Options{
		TickInterval: 20 * time.Millisecond,
		StartupDelay: 10 * time.Millisecond,
		PollInterval: 20 * time.Millisecond,
	}
}

type TestServer struct {
	Session  *sdkmcp.ClientSession
	DB       *sqlite.DB
	Ticks    *tick.Source
	Link     *link.Link
	Cache    *cache.Service
	Activity *activity.Service
}

func New(t *testing.T, opts Options) *TestServer {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	cacheSvc := cache.NewService(sqlite.NewCacheRepository(db), nil)
	require.NoError(t, cacheSvc.Restore(ctx, cache.Snapshot{
		cache.RootQueryID: {"__typename": "Query", "tick": 0},
	}))

	ticks := tick.New(nil, opts.TickInterval, nil)
	require.NoError(t, ticks.Start(ctx))

	parser, err := graphql.NewParser(32)
	require.NoError(t, err)
	schema := engine.NewTickSchema(ticks)

	l, err := link.New(link.Config{
		Executor:        engine.New(schema, parser, nil),
		Classifier:      parser,
		StartupDelay:    opts.StartupDelay,
		PollInterval:    opts.PollInterval,
		PollErrorPolicy: opts.PollErrorPolicy,
		Activity:        activitySvc,
	})
	require.NoError(t, err)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Link:       l,
			Classifier: parser,
			Ticks:      ticks,
			Cache:      cacheSvc,
			Activity:   activitySvc,
			Schema:     schema,
		},
	})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Close()
		ticks.Stop()
		_ = db.Close()
	})

	return &TestServer{
		Session:  session,
		DB:       db,
		Ticks:    ticks,
		Link:     l,
		Cache:    cacheSvc,
		Activity: activitySvc,
	}
}

// CallTool calls a tool and returns its raw result.
func (ts *TestServer) CallTool(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ts.Session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	return result
}

// CallToolJSON calls a tool that must succeed and decodes its text content into out.
func (ts *TestServer) CallToolJSON(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := ts.CallTool(t, name, args)
	require.False(t, result.IsError, "Tool %s returned error: %s", name, TextContent(result))
	require.NoError(t, json.Unmarshal([]byte(TextContent(result)), out))
}

// TextContent returns the first text content of a tool result.
func TextContent(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
