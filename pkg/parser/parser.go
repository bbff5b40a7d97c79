package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// LineReader yields the physical lines of a file one at a time, keeping each
// line's terminator so records can be rebuilt verbatim.
type LineReader struct {
	source       string
	file         *os.File
	reader       *bufio.Reader
	allowPartial bool

	// limit is the file length at open; -1 when the reader is unbounded.
	limit int64
	pos   Position
}

// Option configures a LineReader.
type Option func(*LineReader)

// WithPartialLines makes Next return an unterminated trailing line instead
// of ErrPartialLine. Whole-file reads use it; tailing does not, because the
// writer may still be in the middle of that line.
func WithPartialLines(allow bool) Option {
	return func(r *LineReader) {
		r.allowPartial = allow
	}
}

// Open opens path with OpenShared and returns a reader positioned at the
// start. Reads stop at the file's length when it was opened; bytes appended
// afterwards are left for the next reader. A line cut off by that limit is
// treated as unterminated.
func Open(path string, opts ...Option) (*LineReader, error) {
	f, err := OpenShared(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	r := NewLineReader(io.LimitReader(f, info.Size()), path, opts...)
	r.file = f
	r.limit = info.Size()
	return r, nil
}

// NewLineReader wraps an arbitrary reader. source names it in errors and records.
func NewLineReader(rd io.Reader, source string, opts ...Option) *LineReader {
	r := &LineReader{
		source: source,
		reader: bufio.NewReaderSize(rd, 64*1024),
		limit:  -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns the path or name the reader was created with.
func (r *LineReader) Source() string {
	return r.source
}

// Position returns the number of lines consumed and the byte offset after them.
func (r *LineReader) Position() Position {
	return r.pos
}

// Limit returns the file length captured by Open, or -1 when unbounded.
func (r *LineReader) Limit() int64 {
	return r.limit
}

// Size returns the current size of the underlying file.
func (r *LineReader) Size() (int64, error) {
	if r.file == nil {
		return 0, fmt.Errorf("stat %s: reader is not backed by a file", r.source)
	}
	info, err := r.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", r.source, err)
	}
	return info.Size(), nil
}

// SeekTo jumps directly to a previously recorded position. It is only valid
// for readers created with Open and only if the file has not been rewritten
// since pos was recorded.
func (r *LineReader) SeekTo(pos Position) error {
	if r.file == nil {
		return fmt.Errorf("seeking %s: reader is not backed by a file", r.source)
	}
	if _, err := r.file.Seek(pos.Offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking %s: %w", r.source, err)
	}
	var rd io.Reader = r.file
	if r.limit >= 0 {
		rd = io.LimitReader(r.file, max(r.limit-pos.Offset, 0))
	}
	r.reader.Reset(rd)
	r.pos = pos
	return nil
}

// Skip advances past up to n complete lines without returning them and
// reports how many were skipped. It stops early at end of file.
func (r *LineReader) Skip(ctx context.Context, n int) (int, error) {
	skipped := 0
	for skipped < n {
		_, err := r.next(ctx, false)
		if err == io.EOF || err == ErrPartialLine {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}

// Next returns the next line. It returns io.EOF at end of file. When the
// file ends in an unterminated line and partial lines are not allowed, it
// returns ErrPartialLine and the line stays unconsumed.
func (r *LineReader) Next(ctx context.Context) (record.Line, error) {
	return r.next(ctx, r.allowPartial)
}

func (r *LineReader) next(ctx context.Context, allowPartial bool) (record.Line, error) {
	select {
	case <-ctx.Done():
		return record.Line{}, ctx.Err()
	default:
	}

	raw, err := r.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return record.Line{}, fmt.Errorf("reading %s: %w", r.source, err)
	}

	if err == io.EOF {
		if raw == "" {
			return record.Line{}, io.EOF
		}
		if !allowPartial {
			return record.Line{}, ErrPartialLine
		}
	}

	r.pos.Lines++
	r.pos.Offset += int64(len(raw))

	line := record.Line{Number: r.pos.Lines}
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		line.Content, line.Terminator = raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"):
		line.Content, line.Terminator = raw[:len(raw)-1], "\n"
	default:
		line.Content = raw
	}
	return line, nil
}

// Close releases the underlying file, if any.
func (r *LineReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
