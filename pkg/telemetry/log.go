package telemetry

import (
	"context"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// LogSink writes telemetry to an hclog logger. It backs --stdout runs and
// dry runs without a collector.
type LogSink struct {
	logger hclog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger hclog.Logger) *LogSink {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LogSink{logger: logger}
}

// Emit implements Sink.
func (s *LogSink) Emit(_ context.Context, rec *record.Record) error {
	s.logger.Log(hclogLevel(rec.Level), "record",
		"path", rec.Path,
		"line", rec.FirstLine,
		"lines", rec.Lines,
		"severity", rec.Level.String(),
		"message", rec.Message())
	return nil
}

// EmitError implements Sink.
func (s *LogSink) EmitError(_ context.Context, err error, tags map[string]string) error {
	s.logger.Error("processing error", append([]interface{}{"error", err}, flatten(tags)...)...)
	return nil
}

// EmitEvent implements Sink.
func (s *LogSink) EmitEvent(_ context.Context, name string, props map[string]string) error {
	s.logger.Info(name, flatten(props)...)
	return nil
}

// Close implements Sink.
func (s *LogSink) Close(context.Context) error {
	return nil
}

func hclogLevel(l record.Level) hclog.Level {
	switch l {
	case record.Information:
		return hclog.Info
	case record.Warning:
		return hclog.Warn
	case record.Error, record.Critical:
		return hclog.Error
	default:
		return hclog.Debug
	}
}

// flatten turns a tag map into sorted key/value pairs for hclog.
func flatten(tags map[string]string) []interface{} {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, tags[k])
	}
	return out
}
