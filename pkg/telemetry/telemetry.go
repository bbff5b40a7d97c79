// Package telemetry ships completed records, processing errors and lifecycle
// events to a collector.
package telemetry

import (
	"context"
	"errors"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// Property keys attached to error reports.
const (
	TagSource     = "Source"
	TagPath       = "Log File Path"
	TagLine       = "Log Line"
	TagLineNumber = "Line Number"
)

// Values for TagSource.
const (
	SourceLine    = "Log Parsing Logic (Inner)"
	SourceReader  = "Log Parsing Logic (Outer)"
	SourceEmit    = "Record Emit"
	SourceWatcher = "Directory Watcher"
)

// ErrClosed is returned when emitting to a sink that has been closed.
var ErrClosed = errors.New("telemetry sink closed")

// Sink receives telemetry. Implementations must be safe for concurrent use.
type Sink interface {
	// Emit sends one completed record as a trace.
	Emit(ctx context.Context, rec *record.Record) error

	// EmitError reports a processing error with context properties.
	EmitError(ctx context.Context, err error, tags map[string]string) error

	// EmitEvent sends a named lifecycle event.
	EmitEvent(ctx context.Context, name string, props map[string]string) error

	// Close flushes buffered telemetry and releases resources.
	Close(ctx context.Context) error
}
