package record

import (
	"fmt"
	"strings"
)

// Assembler accumulates physical lines into the in-flight record of one file.
// It is not safe for concurrent use; callers serialize access per path.
type Assembler struct {
	path     string
	detector BoundaryDetector
	classify func(string) Level

	buf   strings.Builder
	level Level
	first int
	lines int
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithDetector replaces the boundary detector.
func WithDetector(d BoundaryDetector) AssemblerOption {
	return func(a *Assembler) {
		if d != nil {
			a.detector = d
		}
	}
}

// WithClassifier replaces the severity classifier.
func WithClassifier(fn func(string) Level) AssemblerOption {
	return func(a *Assembler) {
		if fn != nil {
			a.classify = fn
		}
	}
}

// NewAssembler creates an empty Assembler for the given file path.
func NewAssembler(path string, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		path:     path,
		detector: NewDetector(),
		classify: Classify,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Feed adds one line to the in-flight record. When the line starts a new
// record and lines are already buffered, the buffered record is completed
// and returned.
//
// A panic raised by the detector or classifier is returned as a *LineError.
// The returned record is still valid when both values are non-nil, and the
// buffer may hold a partial record afterwards.
func (a *Assembler) Feed(line Line) (rec *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &LineError{Path: a.path, Line: line, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	b := a.detector.Detect(Tokenize(line.Content))

	if b.IsBoundary && a.lines > 0 {
		rec = a.complete()
	}

	// The severity belongs to the record starting on this line.
	if b.IsBoundary && b.HasSeverity {
		a.level = a.classify(b.Severity)
	}

	if a.lines == 0 {
		a.first = line.Number
	}
	a.buf.WriteString(line.Raw())
	a.lines++

	return rec, nil
}

// Flush completes and returns the in-flight record, or nil if nothing is buffered.
func (a *Assembler) Flush() *Record {
	if a.lines == 0 {
		return nil
	}
	return a.complete()
}

// Pending returns the number of physical lines currently buffered.
func (a *Assembler) Pending() int {
	return a.lines
}

// Reset discards the in-flight record.
func (a *Assembler) Reset() {
	a.buf.Reset()
	a.level = Verbose
	a.first = 0
	a.lines = 0
}

func (a *Assembler) complete() *Record {
	rec := &Record{
		Text:      a.buf.String(),
		Level:     a.level,
		Path:      a.path,
		FirstLine: a.first,
		Lines:     a.lines,
	}
	a.Reset()
	return rec
}
