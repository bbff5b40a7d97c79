package commands

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/logaroo/pkg/config"
	"github.com/ccollicutt/logaroo/pkg/parser"
	"github.com/ccollicutt/logaroo/pkg/tailer"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <config-file> <file|glob>...",
		Short: "Ship every record of existing log files once",
		Long: `Read the given files from their first line and ship all of their records
using the telemetry settings of the configuration file.

Use it to backfill rotated files or anything written while logaroo was not
running. Files are read in full; there is no cursor.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runReplay,
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	files, err := parser.ExpandGlobs(args[1:])
	if err != nil {
		return fmt.Errorf("expanding log files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no log files matched patterns: %v", args[1:])
	}

	logger := newLogger(cmd, cfg.LogLevel)
	sink := newSink(cfg, logger)

	readerOpts := cfg.ReaderOptions(logger.Named("tailer"))
	readerOpts.Stats = &tailer.Stats{}
	reader := tailer.NewReader(sink, readerOpts)

	out := cmd.OutOrStdout()
	var result *multierror.Error
	for _, file := range files {
		n, err := reader.ReadAll(ctx, file)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("replaying %s: %w", file, err))
			continue
		}
		fmt.Fprintf(out, "Replayed %d record(s) from %s\n", n, file)
	}

	if err := sink.Close(context.WithoutCancel(ctx)); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing telemetry: %w", err))
	}

	stats := readerOpts.Stats.Snapshot()
	fmt.Fprintf(out, "Total: %d record(s), %d line(s), %d line error(s)\n", stats.Records, stats.Lines, stats.LineErrors)

	return result.ErrorOrNil()
}
