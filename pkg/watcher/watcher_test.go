package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want tailer.Kind
		ok   bool
	}{
		{fsnotify.Create, tailer.Created, true},
		{fsnotify.Write, tailer.Changed, true},
		{fsnotify.Rename, tailer.Renamed, true},
		{fsnotify.Remove, tailer.Deleted, true},
		{fsnotify.Chmod, 0, false},
		{fsnotify.Create | fsnotify.Write, tailer.Created, true},
		{fsnotify.Rename | fsnotify.Remove, tailer.Deleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, ok := Translate(fsnotify.Event{Name: "a.log", Op: tt.op})
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(Options{Folder: filepath.Join(dir, "missing")}, nil, nil)
	require.Error(t, err)

	file := filepath.Join(dir, "file.log")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(Options{Folder: file}, nil, nil)
	require.Error(t, err)

	_, err = New(Options{Folder: dir, Filter: "[bad"}, nil, nil)
	require.ErrorIs(t, err, filepath.ErrBadPattern)
}

// collect returns a handler that forwards events into a channel.
func collect() (HandlerFunc, chan tailer.Event) {
	ch := make(chan tailer.Event, 128)
	return func(_ context.Context, ev tailer.Event) error {
		ch <- ev
		return nil
	}, ch
}

// waitFor reads events until one matches kind and path.
func waitFor(t *testing.T, ch <-chan tailer.Event, kind tailer.Kind, path string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind && ev.Path == path {
				return
			}
		case <-timeout:
			t.Fatalf("no %s event for %s", kind, path)
		}
	}
}

func startWatcher(t *testing.T, opts Options, h Handler, sink telemetry.Sink) {
	t.Helper()
	w, err := New(opts, h, sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
		require.NoError(t, w.Close())
	})
}

func TestWatcher_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	h, events := collect()
	startWatcher(t, Options{Folder: dir, Filter: "*.log"}, h, telemetry.NewMemory())

	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0644))
	waitFor(t, events, tailer.Created, path)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	waitFor(t, events, tailer.Changed, path)

	rotated := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.Rename(path, rotated))
	waitFor(t, events, tailer.Renamed, path)

	require.NoError(t, os.WriteFile(path, []byte("three\n"), 0644))
	waitFor(t, events, tailer.Created, path)

	require.NoError(t, os.Remove(path))
	waitFor(t, events, tailer.Deleted, path)
}

func TestWatcher_Filter(t *testing.T) {
	dir := t.TempDir()
	h, events := collect()
	startWatcher(t, Options{Folder: dir, Filter: "*.log"}, h, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.log"), 0755))
	path := filepath.Join(dir, "svc.log")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))

	// Events arrive in order, so the first delivered one must be svc.log.
	select {
	case ev := <-events:
		require.Equal(t, path, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0644))
	}

	h, events := collect()
	startWatcher(t, Options{Folder: dir, Filter: "*.log", InitialScan: true}, h, nil)

	waitFor(t, events, tailer.Changed, filepath.Join(dir, "a.log"))
	waitFor(t, events, tailer.Changed, filepath.Join(dir, "b.log"))
}

func TestWatcher_InitialScanHandlerError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("x\n"), 0644))

	boom := errors.New("queue closed")
	w, err := New(Options{Folder: dir, InitialScan: true}, HandlerFunc(func(context.Context, tailer.Event) error {
		return boom
	}), nil)
	require.NoError(t, err)
	defer w.Close()

	require.ErrorIs(t, w.Run(context.Background()), boom)
}

func TestWatcher_ReportError(t *testing.T) {
	dir := t.TempDir()
	sink := telemetry.NewMemory()
	w, err := New(Options{Folder: dir}, HandlerFunc(func(context.Context, tailer.Event) error { return nil }), sink)
	require.NoError(t, err)
	defer w.Close()

	w.reportError(context.Background(), errors.New("queue overflow"))

	errs := sink.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, telemetry.SourceWatcher, errs[0].Tags[telemetry.TagSource])
	require.Equal(t, dir, errs[0].Tags[telemetry.TagPath])
}
