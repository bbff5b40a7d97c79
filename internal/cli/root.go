// Package cli provides the command-line interface for logaroo.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logaroo/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors prevents Cobra from printing this.
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logaroo",
		Short: "Tail multi-line log files and ship their records as telemetry",
		Long: `logaroo follows append-only log files written in the log4net default layout,
reassembles records that span several lines (stack traces, dumps), maps each
record's severity token onto a level and ships it as a trace to an
Application Insights style collector.

A line starts a new record when its third space-separated token looks like a
thread id ([42]). The fourth token is the severity: INFO, WARNING, ERROR or
CRITICAL. Anything else is verbose.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(commands.FlagLogLevel, "", "Log level (trace|debug|info|warn|error), overrides the config")
	rootCmd.PersistentFlags().Bool(commands.FlagLogJSON, false, "Write logs as JSON")

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewReplayCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
