// Package record reassembles multi-line log records and classifies their severity.
//
// The boundary heuristic targets the log4net default layout
// ("date time [thread] LEVEL logger - message"): a physical line starts a new
// record when its third space-separated token looks like a bracketed thread
// number. It is a heuristic, not a grammar.
package record

import (
	"fmt"
	"strings"
)

// Level is the normalized severity of a record.
type Level int

// Severity levels. The numeric values match the collector's severityLevel field.
const (
	Verbose Level = iota
	Information
	Warning
	Error
	Critical
)

var levelNames = [...]string{
	Verbose:     "verbose",
	Information: "information",
	Warning:     "warning",
	Error:       "error",
	Critical:    "critical",
}

// String returns the lowercase level name.
func (l Level) String() string {
	if l < Verbose || l > Critical {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	for i, name := range levelNames {
		if strings.EqualFold(name, string(text)) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity level %q", text)
}

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{Verbose, Information, Warning, Error, Critical}
}

// Line is a single physical line read from a log file.
type Line struct {
	// Content is the line without its terminator.
	Content string

	// Terminator is "\n", "\r\n", or empty for an unterminated final line.
	Terminator string

	// Number is the 1-based line number in the source file.
	Number int
}

// Raw returns the line exactly as it appeared in the file.
func (l Line) Raw() string {
	return l.Content + l.Terminator
}

// Record is one completed logical log entry.
type Record struct {
	// Text is the verbatim concatenation of the record's physical lines,
	// terminators included.
	Text string

	// Level is the classified severity.
	Level Level

	// Path is the file the record was read from.
	Path string

	// FirstLine is the 1-based line number of the record's first line.
	FirstLine int

	// Lines is the number of physical lines in the record.
	Lines int
}

// Message returns the record text without its final line terminator.
func (r *Record) Message() string {
	return strings.TrimSuffix(strings.TrimSuffix(r.Text, "\n"), "\r")
}

// LineError reports a failure while processing a single line.
type LineError struct {
	Path string
	Line Line
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line.Number, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
