package telemetry

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// Multi fans telemetry out to several sinks. Every sink is attempted; the
// errors of those that failed are combined.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, rec *record.Record) error {
	return m.each(func(s Sink) error { return s.Emit(ctx, rec) })
}

// EmitError implements Sink.
func (m Multi) EmitError(ctx context.Context, err error, tags map[string]string) error {
	return m.each(func(s Sink) error { return s.EmitError(ctx, err, tags) })
}

// EmitEvent implements Sink.
func (m Multi) EmitEvent(ctx context.Context, name string, props map[string]string) error {
	return m.each(func(s Sink) error { return s.EmitEvent(ctx, name, props) })
}

// Close implements Sink.
func (m Multi) Close(ctx context.Context) error {
	return m.each(func(s Sink) error { return s.Close(ctx) })
}

func (m Multi) each(fn func(Sink) error) error {
	var result error
	for _, s := range m {
		if err := fn(s); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
