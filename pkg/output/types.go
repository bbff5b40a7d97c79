// Package output renders inspection reports of reassembled log records.
package output

import (
	"strings"
	"time"

	"github.com/ccollicutt/logaroo/pkg/record"
	"github.com/ccollicutt/logaroo/pkg/tailer"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// Report is the complete inspection output for one file.
type Report struct {
	Summary  Summary         `json:"summary"`
	Records  []RecordSummary `json:"records"`
	Errors   []LineError     `json:"errors,omitempty"`
	Metadata Metadata        `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Records    int            `json:"records"`
	Lines      int            `json:"lines"`
	LineErrors int            `json:"line_errors"`
	ByLevel    map[string]int `json:"by_level"`
}

// RecordSummary describes one reassembled record.
type RecordSummary struct {
	FirstLine int          `json:"first_line"`
	Lines     int          `json:"lines"`
	Level     record.Level `json:"level"`

	// Headline is the first physical line without its terminator.
	Headline string `json:"headline"`

	// Text is the verbatim record. It is only rendered in verbose mode.
	Text string `json:"text,omitempty"`
}

// LineError is a line that could not be processed.
type LineError struct {
	// LineNumber is empty for errors not tied to a line.
	LineNumber string `json:"line_number,omitempty"`
	Message    string `json:"message"`
}

// Metadata provides context about the inspection run.
type Metadata struct {
	Source      string             `json:"source"`
	Flush       tailer.FlushPolicy `json:"flush"`
	MinLevel    record.Level       `json:"min_level"`
	InspectedAt time.Time          `json:"inspected_at"`
	Duration    time.Duration      `json:"duration"`
}

// NewReport builds a Report from the records and errors captured while
// reading source. Records below meta.MinLevel are counted but not listed.
func NewReport(records []*record.Record, errs []telemetry.ErrorReport, stats tailer.StatsSnapshot, meta Metadata) *Report {
	report := &Report{
		Records:  make([]RecordSummary, 0, len(records)),
		Metadata: meta,
		Summary: Summary{
			Records:    len(records),
			Lines:      int(stats.Lines),
			LineErrors: int(stats.LineErrors),
			ByLevel:    make(map[string]int, len(record.Levels())),
		},
	}

	for _, l := range record.Levels() {
		report.Summary.ByLevel[l.String()] = 0
	}

	for _, rec := range records {
		report.Summary.ByLevel[rec.Level.String()]++
		if rec.Level < meta.MinLevel {
			continue
		}
		report.Records = append(report.Records, RecordSummary{
			FirstLine: rec.FirstLine,
			Lines:     rec.Lines,
			Level:     rec.Level,
			Headline:  headline(rec.Text),
			Text:      rec.Text,
		})
	}

	for _, e := range errs {
		report.Errors = append(report.Errors, LineError{
			LineNumber: e.Tags[telemetry.TagLineNumber],
			Message:    e.Err.Error(),
		})
	}

	return report
}

// HasLineErrors returns true if any line failed to process.
func (r *Report) HasLineErrors() bool {
	return r.Summary.LineErrors > 0 || len(r.Errors) > 0
}

func headline(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSuffix(line, "\r")
}
