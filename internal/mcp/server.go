package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/ganot/ticklink/internal/link"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Dispatcher starts link sessions and streams their emissions.
type Dispatcher interface {
	Subscribe(ctx context.Context, req graphql.Request) (*link.Subscription, <-chan link.Event)
}

// Classifier determines the kind of a request's main operation.
type Classifier interface {
	Classify(req graphql.Request) (graphql.Operation, error)
}

// TickReader exposes the current tick.
type TickReader interface {
	Current() int64
}

// CacheService defines cache operations needed by MCP.
type CacheService interface {
	Extract(ctx context.Context) (cache.Snapshot, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// SchemaPrinter renders the served schema.
type SchemaPrinter interface {
	SDL() string
}

// Services contains everything the MCP tools operate on.
type Services struct {
	Link       Dispatcher
	Classifier Classifier
	Ticks      TickReader
	Cache      CacheService
	Activity   ActivityService
	Schema     SchemaPrinter
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "ticklink",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server, cfg.Services.Schema)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
