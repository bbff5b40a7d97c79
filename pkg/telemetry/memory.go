package telemetry

import (
	"context"
	"sync"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// ErrorReport is an error captured by Memory.
type ErrorReport struct {
	Err  error
	Tags map[string]string
}

// EventReport is an event captured by Memory.
type EventReport struct {
	Name  string
	Props map[string]string
}

// Memory keeps all telemetry in memory. The inspect command and tests use it.
type Memory struct {
	mu      sync.Mutex
	records []*record.Record
	errors  []ErrorReport
	events  []EventReport
	closed  bool
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit implements Sink.
func (m *Memory) Emit(_ context.Context, rec *record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records = append(m.records, rec)
	return nil
}

// EmitError implements Sink.
func (m *Memory) EmitError(_ context.Context, err error, tags map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.errors = append(m.errors, ErrorReport{Err: err, Tags: copyTags(tags)})
	return nil
}

// EmitEvent implements Sink.
func (m *Memory) EmitEvent(_ context.Context, name string, props map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.events = append(m.events, EventReport{Name: name, Props: copyTags(props)})
	return nil
}

// Close implements Sink.
func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Records returns a copy of the records received so far.
func (m *Memory) Records() []*record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*record.Record(nil), m.records...)
}

// Errors returns a copy of the errors received so far.
func (m *Memory) Errors() []ErrorReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ErrorReport(nil), m.errors...)
}

// Events returns a copy of the events received so far.
func (m *Memory) Events() []EventReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EventReport(nil), m.events...)
}
