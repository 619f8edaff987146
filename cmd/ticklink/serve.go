package main

import (
	"github.com/ganot/ticklink/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the link as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr to keep stdout clean for JSON-RPC.
			logger, closeLog := newLogger(cmd.ErrOrStderr(), root.cfg.Log.Level)
			defer closeLog()

			ctx := cmd.Context()
			rt, err := openRuntime(ctx, root.cfg, logger)
			if err != nil {
				logger.Error("failed to start", "error", err)
				return err
			}
			defer rt.Close()

			server := mcp.NewServer(mcp.Config{
				Services: mcp.Services{
					Link:       rt.link,
					Classifier: rt.parser,
					Ticks:      rt.ticks,
					Cache:      rt.cache,
					Activity:   rt.activity,
					Schema:     rt.schema,
				},
				Version: version,
				Logger:  logger,
			})

			logger.Info("starting stdio transport")
			// Run blocks until stdin closes or ctx is cancelled.
			if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("stdio server error", "error", err)
				return err
			}
			logger.Info("shutting down")
			return nil
		},
	}
}
