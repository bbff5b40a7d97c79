package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/logaroo/pkg/config"
	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/watcher"
)

// RunOptions holds command-line options for the run command.
type RunOptions struct {
	ShutdownTimeout time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <config-file>",
		Short: "Tail a log folder and ship records",
		Long: `Watch the configured folder, tail every file matching the filter,
reassemble multi-line records and ship each one to the telemetry collector.

Runs until interrupted (SIGINT or SIGTERM). On shutdown queued
notifications are drained, held records are emitted and buffered telemetry
is flushed.

Exit codes:
  0 - Clean shutdown
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to drain and flush on shutdown")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cmd, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger, opts.ShutdownTimeout)
}

// serve runs the watcher until ctx is done, then shuts everything down in
// order: watcher, dispatcher, sinks.
func serve(ctx context.Context, cfg *config.Config, logger hclog.Logger, shutdownTimeout time.Duration) error {
	sink := newSink(cfg, logger)

	readerOpts := cfg.ReaderOptions(logger.Named("tailer"))
	disp := tailer.NewDispatcher(sink, cfg.Watch.Workers, readerOpts)

	w, err := watcher.New(cfg.WatcherOptions(logger.Named("watcher")), disp, sink)
	if err != nil {
		_ = sink.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("starting watcher: %w", err)
	}

	if err := sink.EmitEvent(ctx, StartupEvent, map[string]string{
		"watch_folder": cfg.Watch.Folder,
		"watch_filter": cfg.Watch.Filter,
	}); err != nil {
		logger.Warn("sending startup event failed", "error", err)
	}

	// Queued notifications are still drained after ctx is cancelled.
	disp.Start(context.WithoutCancel(ctx))

	logger.Info("logaroo running",
		"folder", cfg.Watch.Folder,
		"filter", cfg.Watch.Filter,
		"mode", cfg.Watch.Mode,
		"workers", cfg.Watch.Workers,
		"flush", cfg.Parse.Flush,
	)

	var result *multierror.Error
	if err := w.Run(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("watching: %w", err))
	}
	logger.Info("shutting down")

	if err := w.Close(); err != nil {
		logger.Debug("closing watcher", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := disp.Close(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("draining notifications: %w", err))
	}
	if err := sink.Close(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing telemetry: %w", err))
	}

	stats := disp.Stats()
	logger.Info("stopped",
		"lines", stats.Lines,
		"records", stats.Records,
		"line_errors", stats.LineErrors,
		"read_errors", stats.ReadErrors,
		"resets", stats.Resets,
	)

	return result.ErrorOrNil()
}
