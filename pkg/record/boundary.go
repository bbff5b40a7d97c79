package record

import (
	"regexp"
	"strings"
)

// Defaults for the log4net layout.
const (
	DefaultThreadPattern = `\[[0-9]+]`
	DefaultThreadIndex   = 2
	DefaultSeverityIndex = 3
)

var defaultThreadRegexp = regexp.MustCompile(DefaultThreadPattern)

// Tokenize splits a line on the single ASCII space. Runs of spaces yield
// empty tokens, so indented continuation lines shift every later index.
func Tokenize(line string) []string {
	return strings.Split(line, " ")
}

// Boundary is the result of inspecting one tokenized line.
type Boundary struct {
	// IsBoundary reports whether the line starts a new record.
	IsBoundary bool

	// Severity is the severity token, valid only when HasSeverity is set.
	Severity    string
	HasSeverity bool
}

// BoundaryDetector decides whether a tokenized line starts a new record.
type BoundaryDetector interface {
	Detect(tokens []string) Boundary
}

// Detector is the positional boundary heuristic. The thread pattern is
// matched anywhere inside the token, so "x[40]y" also counts.
type Detector struct {
	pattern       *regexp.Regexp
	threadIndex   int
	severityIndex int
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithThreadPattern overrides the thread token pattern.
func WithThreadPattern(re *regexp.Regexp) DetectorOption {
	return func(d *Detector) {
		if re != nil {
			d.pattern = re
		}
	}
}

// WithTokenIndexes overrides where the thread and severity tokens sit.
func WithTokenIndexes(thread, severity int) DetectorOption {
	return func(d *Detector) {
		if thread >= 0 {
			d.threadIndex = thread
		}
		if severity >= 0 {
			d.severityIndex = severity
		}
	}
}

// NewDetector creates a Detector with the log4net defaults.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		pattern:       defaultThreadRegexp,
		threadIndex:   DefaultThreadIndex,
		severityIndex: DefaultSeverityIndex,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect implements BoundaryDetector.
func (d *Detector) Detect(tokens []string) Boundary {
	if len(tokens) <= d.threadIndex || !d.pattern.MatchString(tokens[d.threadIndex]) {
		return Boundary{}
	}

	b := Boundary{IsBoundary: true}
	if len(tokens) > d.severityIndex {
		b.Severity = tokens[d.severityIndex]
		b.HasSeverity = true
	}
	return b
}
