package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "logaroo: %d records from %d lines, %d line errors\n",
		report.Summary.Records,
		report.Summary.Lines,
		report.Summary.LineErrors)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== logaroo Record Report ===")
	fmt.Fprintf(w, "Source: %s\n", report.Metadata.Source)
	fmt.Fprintln(w)

	for _, rec := range report.Records {
		f.formatRecord(&rec, w)
	}
	if len(report.Records) > 0 {
		fmt.Fprintln(w)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "Line errors: %d\n", len(report.Errors))
		for _, e := range report.Errors {
			if e.LineNumber != "" {
				fmt.Fprintf(w, "  - line %s: %s\n", e.LineNumber, e.Message)
			} else {
				fmt.Fprintf(w, "  - %s\n", e.Message)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d records, %d lines, %d line errors\n",
		report.Summary.Records,
		report.Summary.Lines,
		report.Summary.LineErrors)

	levels := make([]string, 0, len(record.Levels()))
	for _, l := range record.Levels() {
		levels = append(levels, fmt.Sprintf("%s=%d", l, report.Summary.ByLevel[l.String()]))
	}
	_, err := fmt.Fprintf(w, "Levels: %s\n", strings.Join(levels, " "))

	if f.opts.Verbose {
		fmt.Fprintf(w, "Flush: %s\n", report.Metadata.Flush)
		_, err = fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return err
}

func (f *TextFormatter) formatRecord(rec *RecordSummary, w io.Writer) {
	span := fmt.Sprintf("%d", rec.FirstLine)
	if rec.Lines > 1 {
		span = fmt.Sprintf("%d-%d", rec.FirstLine, rec.FirstLine+rec.Lines-1)
	}
	fmt.Fprintf(w, "[%s] lines %s: %s\n", strings.ToUpper(rec.Level.String()), span, rec.Headline)

	if !f.opts.Verbose || rec.Lines < 2 {
		return
	}
	// Continuation lines, indented under the headline.
	_, rest, _ := strings.Cut(rec.Text, "\n")
	for _, line := range strings.Split(strings.TrimRight(rest, "\r\n"), "\n") {
		fmt.Fprintf(w, "    | %s\n", strings.TrimSuffix(line, "\r"))
	}
}
