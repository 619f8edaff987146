package main

import (
	"github.com/ganot/ticklink/internal/client"
	"github.com/ganot/ticklink/internal/demo"
	"github.com/spf13/cobra"
)

func newDemoCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Show the live tick in the terminal",
		Long: "Show the live tick with a show/hide toggle. Type t to toggle and q to quit.\n" +
			"Hiding the tick unsubscribes; showing it again starts a fresh subscription.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog := newLogger(cmd.ErrOrStderr(), root.cfg.Log.Level)
			defer closeLog()

			ctx := cmd.Context()
			rt, err := openRuntime(ctx, root.cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			c := client.New(rt.link, rt.parser, rt.cache, client.Options{
				SSRForceFetchDelay: root.cfg.Client.SSRForceFetchDelay,
			}, logger.With("component", "client"))

			app := demo.New(c, cmd.OutOrStdout(), logger.With("component", "demo"))
			return app.Run(ctx, cmd.InOrStdin())
		},
	}
}
