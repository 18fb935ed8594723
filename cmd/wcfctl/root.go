package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var endpointFlag string
	var jsonFlag bool

	ctx := newCommandContext(&configFlag, &endpointFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "wcfctl",
		Short:         "Control a wcferry worker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&endpointFlag, "endpoint", "e", "", "Worker name to resolve through the registry")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")

	for _, cmd := range newWorkerCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newQueryCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newSendCommand(ctx))
	rootCmd.AddCommand(newRoomCommand(ctx))
	rootCmd.AddCommand(newFriendCommand(ctx))
	for _, cmd := range newMiscCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newListenCommand(ctx))
	rootCmd.AddCommand(newMockCommand(ctx))

	return rootCmd
}
