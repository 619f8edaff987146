package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/graphql"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type tools struct {
	services Services
}

func registerTools(server *sdkmcp.Server, services Services) {
	t := &tools{services: services}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "execute_operation",
		Description: "Dispatch a GraphQL operation through the link. Queries return one result; subscriptions return the requested number of emissions and are then unsubscribed.",
	}, t.executeOperation)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "current_tick",
		Description: "Read the tick counter directly, bypassing the link",
	}, t.currentTick)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "read_cache",
		Description: "Return the normalized result cache contents",
	}, t.readCache)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List link session events, newest first, optionally filtered by session and type",
	}, t.getRecentActivity)
}

func (t *tools) executeOperation(ctx context.Context, _ *sdkmcp.CallToolRequest, in ExecuteOperationParams) (*sdkmcp.CallToolResult, ExecuteOperationResult, error) {
	if in.Query == "" {
		return nil, ExecuteOperationResult{}, fmt.Errorf("query is required")
	}
	emissions := in.Emissions
	if emissions <= 0 {
		emissions = defaultEmissions
	}
	if emissions > maxEmissions {
		emissions = maxEmissions
	}

	req := graphql.Request{
		Query:         in.Query,
		OperationName: in.OperationName,
		Variables:     in.Variables,
	}

	out := ExecuteOperationResult{Results: []map[string]any{}}
	streaming := false
	if op, err := t.services.Classifier.Classify(req); err == nil {
		out.Kind = op.Kind.String()
		streaming = op.Kind.Streaming()
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub, events := t.services.Link.Subscribe(runCtx, req)
	defer func() {
		cancel()
		for range events {
		}
	}()
	out.SessionID = sub.ID()

	for ev := range events {
		switch {
		case ev.Err != nil:
			out.Error = MapError(ev.Err)
			return nil, out, nil
		case ev.Complete:
			out.Completed = true
			return nil, out, nil
		default:
			out.Results = append(out.Results, ev.Result.Data)
			if streaming && len(out.Results) >= emissions {
				return nil, out, nil
			}
		}
	}
	return nil, out, ctx.Err()
}

func (t *tools) currentTick(_ context.Context, _ *sdkmcp.CallToolRequest, _ CurrentTickParams) (*sdkmcp.CallToolResult, CurrentTickResult, error) {
	return nil, CurrentTickResult{Tick: t.services.Ticks.Current()}, nil
}

func (t *tools) readCache(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ReadCacheParams) (*sdkmcp.CallToolResult, ReadCacheResult, error) {
	snap, err := t.services.Cache.Extract(ctx)
	if err != nil {
		return nil, ReadCacheResult{}, MapError(err)
	}
	if snap == nil {
		snap = map[string]map[string]any{}
	}
	return nil, ReadCacheResult{Snapshot: snap}, nil
}

func (t *tools) getRecentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRecentActivityParams) (*sdkmcp.CallToolResult, GetRecentActivityResult, error) {
	opts := activity.ListActivityOptions{Limit: in.Limit, Offset: in.Offset}
	if in.SessionID != "" {
		opts.SessionID = &in.SessionID
	}
	if in.ActivityType != "" {
		typ := activity.ActivityType(in.ActivityType)
		opts.ActivityType = &typ
	}

	entries, err := t.services.Activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return nil, GetRecentActivityResult{}, MapError(err)
	}

	out := GetRecentActivityResult{Entries: make([]ActivityEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, ActivityEntry{
			ID:            e.ID,
			SessionID:     e.SessionID,
			OperationName: e.OperationName,
			OperationKind: e.OperationKind,
			ActivityType:  string(e.ActivityType),
			Summary:       e.Summary,
			Details:       e.Details,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return nil, out, nil
}
