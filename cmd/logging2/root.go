package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dirFlags []string

	ctx := newCommandContext(&dirFlags)

	rootCmd := &cobra.Command{
		Use:           "logging2",
		Short:         "Inspect and exercise logging configuration documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringArrayVarP(&dirFlags, "dir", "d", nil,
		"Configuration source directory, repeatable; earlier directories win")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newEmitCommand(ctx))

	return rootCmd
}
