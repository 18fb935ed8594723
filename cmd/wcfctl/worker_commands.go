package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkerCommands(ctx *commandContext) []*cobra.Command {
	var debug bool
	start := &cobra.Command{
		Use:   "start",
		Short: "Start the worker process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := ctx.config.Worker
			if err := ctx.supervisor().Start(w.Path, debug || w.Debug); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "worker started on port %d\n", w.Port)
			return nil
		},
	}
	start.Flags().BoolVar(&debug, "debug", false, "Start the worker with debug logging")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the worker process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.supervisor().Stop(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "worker stopped")
			return nil
		},
	}

	return []*cobra.Command{start, stop}
}
