package main

import (
	"github.com/spf13/cobra"
)

// buildVersion is stamped with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func newRootCommand() *cobra.Command {
	var configFlag, logLevel, logFormat string

	ctx := newCommandContext(&configFlag, &logLevel, &logFormat)

	rootCmd := &cobra.Command{
		Use:           "scenereel",
		Short:         "Render chat and explainer videos from project files",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Render settings file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newDurationCommand(ctx))
	rootCmd.AddCommand(newTimelineCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newResolutionsCommand())
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newDraftCommand(ctx))

	return rootCmd
}
