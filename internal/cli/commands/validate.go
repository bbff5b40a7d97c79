package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logaroo/pkg/config"
	"github.com/ccollicutt/logaroo/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a logaroo configuration file without watching anything.

Checks:
  - YAML syntax
  - Required fields (instrumentation key, watch folder)
  - Collector endpoint URL
  - Filter and thread pattern validity
  - Mode and flush policy names
  - Watch folder existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.LogLevel)

	fmt.Fprintf(out, "\nTelemetry:\n")
	if cfg.Telemetry.InstrumentationKey != "" {
		fmt.Fprintf(out, "  Endpoint:   %s\n", cfg.Telemetry.Endpoint)
		fmt.Fprintf(out, "  Key:        %s\n", maskKey(cfg.Telemetry.InstrumentationKey))
		fmt.Fprintf(out, "  Batching:   %d item(s) or %s\n", cfg.Telemetry.BatchSize, cfg.Telemetry.FlushInterval)
		fmt.Fprintf(out, "  Compress:   %t\n", cfg.Telemetry.Compress)
	}
	fmt.Fprintf(out, "  Stdout:     %t\n", cfg.Telemetry.Stdout)

	fmt.Fprintf(out, "\nWatch:\n")
	fmt.Fprintf(out, "  Folder:     %s\n", cfg.Watch.Folder)
	fmt.Fprintf(out, "  Filter:     %s\n", cfg.Watch.Filter)
	fmt.Fprintf(out, "  Mode:       %s\n", cfg.Watch.Mode)
	fmt.Fprintf(out, "  Workers:    %d\n", cfg.Watch.Workers)

	fmt.Fprintf(out, "\nParse:\n")
	fmt.Fprintf(out, "  Thread:     token %d matches %s\n", cfg.Parse.ThreadIndex, cfg.Parse.ThreadPattern)
	fmt.Fprintf(out, "  Severity:   token %d\n", cfg.Parse.SeverityIndex)
	fmt.Fprintf(out, "  Flush:      %s\n", cfg.Parse.Flush)

	// Folder problems are warnings only; it may not exist yet.
	files, err := parser.MatchingFiles(cfg.Watch.Folder, cfg.Watch.Filter)
	if err != nil {
		fmt.Fprintf(out, "\nWarning: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(out, "\nWarning: No files in %s match %s yet\n", cfg.Watch.Folder, cfg.Watch.Filter)
	} else {
		fmt.Fprintf(out, "\nLog files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}

	return nil
}

// maskKey keeps the first and last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
