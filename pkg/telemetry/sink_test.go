package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logaroo/pkg/record"
)

type failingSink struct {
	Memory
	err error
}

func (f *failingSink) Emit(context.Context, *record.Record) error { return f.err }

func TestMulti_FansOut(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	m := Multi{a, b}
	ctx := context.Background()

	require.NoError(t, m.Emit(ctx, testRecord()))
	require.NoError(t, m.EmitError(ctx, errors.New("x"), map[string]string{TagPath: "p"}))
	require.NoError(t, m.EmitEvent(ctx, "started", nil))

	for _, s := range []*Memory{a, b} {
		require.Len(t, s.Records(), 1)
		require.Len(t, s.Errors(), 1)
		require.Equal(t, "p", s.Errors()[0].Tags[TagPath])
		require.Len(t, s.Events(), 1)
	}
}

func TestMulti_CombinesErrors(t *testing.T) {
	ok := NewMemory()
	m := Multi{
		&failingSink{err: errors.New("first down")},
		ok,
		&failingSink{err: errors.New("second down")},
	}

	err := m.Emit(context.Background(), testRecord())
	require.Error(t, err)
	require.Contains(t, err.Error(), "first down")
	require.Contains(t, err.Error(), "second down")
	require.Len(t, ok.Records(), 1)
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close(context.Background()))
	require.Equal(t, ErrClosed, m.Emit(context.Background(), testRecord()))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Level:  hclog.Trace,
		Output: &buf,
	})

	s := NewLogSink(logger)
	ctx := context.Background()

	require.NoError(t, s.Emit(ctx, testRecord()))
	require.NoError(t, s.EmitError(ctx, errors.New("bad line"), map[string]string{TagLineNumber: "3"}))
	require.NoError(t, s.EmitEvent(ctx, "OnStart", map[string]string{"watch_folder": "/tmp"}))
	require.NoError(t, s.Close(ctx))

	out := buf.String()
	require.Contains(t, out, "[WARN]")
	require.Contains(t, out, "disk low")
	require.Contains(t, out, "bad line")
	require.Contains(t, out, "OnStart")
	require.True(t, strings.Contains(out, "watch_folder=/tmp"), out)
}
