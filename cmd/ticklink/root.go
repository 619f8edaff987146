package main

import (
	"github.com/ganot/ticklink/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	LogLevel   string

	cfg config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ticklink",
		Short: "Tick counter served through a polling subscription link",
		Long: "ticklink runs a tick counter behind a small GraphQL schema. Subscriptions are\n" +
			"served by re-executing the operation on a fixed period.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (default $TICKLINK_CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newDemoCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newExecCommand(opts))

	return cmd
}
