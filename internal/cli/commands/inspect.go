package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logaroo/pkg/config"
	"github.com/ccollicutt/logaroo/pkg/output"
	"github.com/ccollicutt/logaroo/pkg/record"
	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output   string
	Config   string
	Flush    string
	MinLevel string
	Verbose  bool
	Quiet    bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <log-file>",
		Short: "Show how a log file is split into records",
		Long: `Reassemble a log file locally and print its records with their severity.
Nothing is shipped.

Use it to check the boundary heuristic against a real file before pointing
logaroo at it. The parse section of --config is honored when given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file for parse settings")
	cmd.Flags().StringVar(&opts.Flush, "flush", "", "Flush policy (end_of_read|hold|never)")
	cmd.Flags().StringVar(&opts.MinLevel, "min-level", "verbose", "Only list records at or above this level")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include the full text of every record")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	path := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.DefaultConfig()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Read(ctx, opts.Config); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if opts.Flush != "" {
		cfg.Parse.Flush = tailer.FlushPolicy(opts.Flush)
	}
	if err := config.ValidateSources(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	var minLevel record.Level
	if err := minLevel.UnmarshalText([]byte(opts.MinLevel)); err != nil {
		return fmt.Errorf("invalid --min-level: %w", err)
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg.LogLevel)
	mem := telemetry.NewMemory()
	stats := &tailer.Stats{}

	readerOpts := cfg.ReaderOptions(logger.Named("tailer"))
	readerOpts.Stats = stats
	reader := tailer.NewReader(mem, readerOpts)

	start := time.Now()
	if _, err := reader.ReadAll(ctx, path); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	report := output.NewReport(mem.Records(), mem.Errors(), stats.Snapshot(), output.Metadata{
		Source:      path,
		Flush:       cfg.Parse.Flush,
		MinLevel:    minLevel,
		InspectedAt: start,
		Duration:    time.Since(start),
	})

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}
