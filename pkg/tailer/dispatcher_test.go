package tailer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

func TestDispatcher_PerPathOrdering(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	sink := telemetry.NewMemory()

	d := NewDispatcher(sink, 3, Options{})
	d.Start(ctx)

	paths := make([]string, 5)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("svc%d.log", i))
	}

	// Each append is followed by a notification; passes for one path must
	// never overlap or repeat lines.
	const rounds = 20
	for n := 1; n <= rounds; n++ {
		for _, p := range paths {
			appendLines(t, p, logLine(n, "INFO"))
			require.NoError(t, d.Dispatch(ctx, Event{Kind: Changed, Path: p}))
		}
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(closeCtx))

	byPath := map[string][]int{}
	for _, rec := range sink.Records() {
		byPath[rec.Path] = append(byPath[rec.Path], rec.FirstLine)
	}
	require.Len(t, byPath, len(paths))
	for _, p := range paths {
		lines := byPath[filepath.Clean(p)]
		require.Len(t, lines, rounds, p)
		for i, n := range lines {
			require.Equal(t, i+1, n, "records of %s out of order", p)
		}
	}

	snap := d.Stats()
	require.Equal(t, int64(rounds*len(paths)), snap.Lines)
	require.Equal(t, int64(rounds*len(paths)), snap.Records)
	require.Zero(t, snap.ReadErrors)
}

func TestDispatcher_CloseFlushesHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	ctx := context.Background()
	sink := telemetry.NewMemory()

	d := NewDispatcher(sink, 2, Options{Flush: FlushHold})
	d.Start(ctx)

	appendLines(t, path, sampleLog...)
	require.NoError(t, d.Dispatch(ctx, Event{Kind: Changed, Path: path}))
	require.NoError(t, d.Close(ctx))

	require.Len(t, sink.Records(), 4)
}

func TestDispatcher_DispatchAfterClose(t *testing.T) {
	d := NewDispatcher(telemetry.NewMemory(), 0, Options{})
	d.Start(context.Background())
	require.NoError(t, d.Close(context.Background()))

	err := d.Dispatch(context.Background(), Event{Kind: Changed, Path: "x.log"})
	require.ErrorIs(t, err, ErrDispatcherClosed)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_CloseReleasesBlockedDispatch(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(telemetry.NewMemory(), 1, Options{})

	for i := 0; i < cap(d.workers[0].events); i++ {
		require.NoError(t, d.Dispatch(ctx, Event{Kind: Changed, Path: "app.log"}))
	}

	blocked := make(chan error, 1)
	go func() {
		blocked <- d.Dispatch(ctx, Event{Kind: Changed, Path: "app.log"})
	}()

	closed := make(chan error, 1)
	go func() {
		closed <- d.Close(ctx)
	}()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return while Dispatch was blocked")
	}

	select {
	case err := <-blocked:
		require.ErrorIs(t, err, ErrDispatcherClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Dispatch stayed blocked after Close")
	}
}
