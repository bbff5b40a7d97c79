// Package watcher turns filesystem notifications for one folder into
// tailer events.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/ccollicutt/logaroo/pkg/parser"
	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// Handler receives translated events. *tailer.Dispatcher implements it.
type Handler interface {
	Dispatch(ctx context.Context, ev tailer.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev tailer.Event) error

// Dispatch calls f.
func (f HandlerFunc) Dispatch(ctx context.Context, ev tailer.Event) error {
	return f(ctx, ev)
}

// Options configures a Watcher.
type Options struct {
	// Folder is watched non-recursively.
	Folder string

	// Filter is a filepath.Match pattern applied to base names. Empty
	// matches every file.
	Filter string

	// InitialScan emits a Changed event for every matching file when Run
	// starts, so files written while logaroo was down are picked up.
	InitialScan bool

	Logger hclog.Logger
}

// Watcher watches one folder.
type Watcher struct {
	fsw     *fsnotify.Watcher
	opts    Options
	handler Handler
	sink    telemetry.Sink
	logger  hclog.Logger
}

// New starts watching opts.Folder. Events are delivered once Run is called.
func New(opts Options, handler Handler, sink telemetry.Sink) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if _, err := parser.MatchFilter(opts.Filter, "probe"); err != nil {
		return nil, err
	}

	info, err := os.Stat(opts.Folder)
	if err != nil {
		return nil, fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch folder %s is not a directory", opts.Folder)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(opts.Folder); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", opts.Folder, err)
	}

	return &Watcher{
		fsw:     fsw,
		opts:    opts,
		handler: handler,
		sink:    sink,
		logger:  opts.Logger,
	}, nil
}

// Run delivers events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching folder", "folder", w.opts.Folder, "filter", w.opts.Filter)

	if w.opts.InitialScan {
		if err := w.scan(ctx); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.reportError(ctx, err)
		}
	}
}

// Close stops the underlying watcher. Run returns afterwards.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) scan(ctx context.Context) error {
	files, err := parser.MatchingFiles(w.opts.Folder, w.opts.Filter)
	if err != nil {
		return err
	}
	w.logger.Debug("initial scan", "files", len(files))

	for _, path := range files {
		if err := w.deliver(ctx, tailer.Event{Kind: tailer.Changed, Path: path}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, fev fsnotify.Event) {
	kind, ok := Translate(fev)
	if !ok {
		return
	}

	match, _ := parser.MatchFilter(w.opts.Filter, fev.Name)
	if !match {
		return
	}

	// New subdirectories are not followed.
	if kind == tailer.Created {
		if info, err := os.Stat(fev.Name); err == nil && info.IsDir() {
			return
		}
	}

	w.logger.Trace("filesystem event", "op", fev.Op.String(), "path", fev.Name)
	if err := w.deliver(ctx, tailer.Event{Kind: kind, Path: filepath.Clean(fev.Name)}); err != nil {
		w.logger.Debug("event not delivered", "path", fev.Name, "error", err)
	}
}

func (w *Watcher) deliver(ctx context.Context, ev tailer.Event) error {
	err := w.handler.Dispatch(ctx, ev)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watcher) reportError(ctx context.Context, err error) {
	w.logger.Warn("watcher error", "error", err)
	if w.sink == nil {
		return
	}
	tags := map[string]string{
		telemetry.TagSource: telemetry.SourceWatcher,
		telemetry.TagPath:   w.opts.Folder,
	}
	if sinkErr := w.sink.EmitError(ctx, fmt.Errorf("watching %s: %w", w.opts.Folder, err), tags); sinkErr != nil {
		w.logger.Error("reporting watcher error failed", "error", sinkErr)
	}
}

// Translate maps an fsnotify operation to a notification kind. Removal wins
// over rename, rename over create and create over write when several bits
// are set. Chmod-only events are dropped.
func Translate(ev fsnotify.Event) (tailer.Kind, bool) {
	switch {
	case ev.Has(fsnotify.Remove):
		return tailer.Deleted, true
	case ev.Has(fsnotify.Rename):
		return tailer.Renamed, true
	case ev.Has(fsnotify.Create):
		return tailer.Created, true
	case ev.Has(fsnotify.Write):
		return tailer.Changed, true
	default:
		return 0, false
	}
}
