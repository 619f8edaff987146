package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganot/ticklink/internal/graphql"
	"github.com/spf13/cobra"
)

type execOptions struct {
	OperationName string
	Variables     string
	Emissions     int
}

func newExecCommand(root *rootOptions) *cobra.Command {
	opts := &execOptions{}

	cmd := &cobra.Command{
		Use:   "exec <document>",
		Short: "Dispatch one operation and print its results as JSON lines",
		Long: "Dispatch one operation through the link. Queries and mutations print one\n" +
			"result. Subscriptions print a result per poll until --emissions results\n" +
			"have been printed or the command is interrupted.",
		Example: `  ticklink exec 'query Tick { tick }'
  ticklink exec 'subscription Ticked { ticked }' --emissions 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.OperationName, "operation-name", "", "operation to run when the document has several")
	cmd.Flags().StringVar(&opts.Variables, "variables", "", "operation variables as a JSON object")
	cmd.Flags().IntVar(&opts.Emissions, "emissions", 0, "stop after this many results (0 streams until interrupted)")

	return cmd
}

func runExec(cmd *cobra.Command, root *rootOptions, opts *execOptions, document string) error {
	if opts.Emissions < 0 {
		return fmt.Errorf("--emissions must not be negative, got %d", opts.Emissions)
	}
	req := graphql.Request{Query: document, OperationName: opts.OperationName}
	if opts.Variables != "" {
		if err := json.Unmarshal([]byte(opts.Variables), &req.Variables); err != nil {
			return fmt.Errorf("invalid --variables: %w", err)
		}
	}

	logger, closeLog := newLogger(cmd.ErrOrStderr(), root.cfg.Log.Level)
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := openRuntime(ctx, root.cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	_, events := rt.link.Subscribe(ctx, req)
	defer func() {
		cancel()
		for range events {
		}
	}()

	enc := json.NewEncoder(cmd.OutOrStdout())
	printed := 0
	for ev := range events {
		switch {
		case ev.Err != nil:
			return ev.Err
		case ev.Complete:
			return nil
		default:
			if err := enc.Encode(ev.Result); err != nil {
				return err
			}
			printed++
			if opts.Emissions > 0 && printed >= opts.Emissions {
				return nil
			}
		}
	}
	// Interrupted.
	return nil
}
