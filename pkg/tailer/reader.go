package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/ccollicutt/logaroo/pkg/parser"
	"github.com/ccollicutt/logaroo/pkg/record"
	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// Options configures a Reader.
type Options struct {
	Mode  Mode
	Flush FlushPolicy

	// AssemblerOptions are applied to every record.Assembler the reader creates.
	AssemblerOptions []record.AssemblerOption

	Logger hclog.Logger

	// Stats receives counters. A private instance is used when nil.
	Stats *Stats
}

func (o *Options) setDefaults() {
	if o.Mode == "" {
		o.Mode = ModeTail
	}
	if o.Flush == "" {
		o.Flush = FlushEndOfRead
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	if o.Stats == nil {
		o.Stats = &Stats{}
	}
}

// Reader turns notifications into reads and emits completed records.
// It is not safe for concurrent use.
type Reader struct {
	sink     telemetry.Sink
	opts     Options
	logger   hclog.Logger
	sessions map[string]*Session

	// emitted counts records this reader has emitted. Stats may be shared
	// across the readers of a Dispatcher.
	emitted int
}

// NewReader creates a Reader that emits to sink.
func NewReader(sink telemetry.Sink, opts Options) *Reader {
	opts.setDefaults()
	return &Reader{
		sink:     sink,
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for path, creating it on first use.
func (r *Reader) Session(path string) *Session {
	path = filepath.Clean(path)
	s, ok := r.sessions[path]
	if !ok {
		s = newSession(path)
		if r.opts.Flush == FlushHold {
			s.held = r.newAssembler(path)
		}
		r.sessions[path] = s
	}
	return s
}

// Cursor returns the cursor of path, zero if it has never been read.
func (r *Reader) Cursor(path string) int {
	if s, ok := r.sessions[filepath.Clean(path)]; ok {
		return s.Cursor()
	}
	return 0
}

// Handle processes one notification according to the reader's mode. It
// never panics or returns an error; failures are reported to the sink.
func (r *Reader) Handle(ctx context.Context, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			r.reportError(ctx, fmt.Errorf("handling %s event: panic: %v", ev.Kind, p), map[string]string{
				telemetry.TagSource: telemetry.SourceReader,
				telemetry.TagPath:   ev.Path,
			})
		}
	}()

	switch r.opts.Mode {
	case ModeBulk:
		if ev.Kind != Created {
			return
		}
		if _, err := r.ReadAll(ctx, ev.Path); err != nil {
			r.reportReadError(ctx, ev.Path, err)
		}
	default:
		r.OnFileChanged(ctx, ev.Path, ev.Kind)
	}
}

// OnFileChanged applies one tail-mode notification to the session of path.
//
// Deleted, renamed and missing files reset the cursor without reading.
// A created file is reset and then read from its first line. A changed file
// is read from the cursor to its length at open; lines appended during the
// pass wait for the next notification.
func (r *Reader) OnFileChanged(ctx context.Context, path string, kind Kind) {
	s := r.Session(path)

	if kind == Deleted || kind == Renamed {
		r.reset(ctx, s, kind)
		return
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		r.reset(ctx, s, kind)
		return
	}

	if kind == Created {
		r.reset(ctx, s, kind)
	}

	if err := r.readNew(ctx, s); err != nil {
		r.reportReadError(ctx, s.path, err)
	}
}

func (r *Reader) reset(ctx context.Context, s *Session, kind Kind) {
	if s.Cursor() > 0 || s.Pending() > 0 {
		r.logger.Debug("resetting cursor", "path", s.path, "event", kind.String(), "cursor", s.Cursor())
	}
	r.opts.Stats.resets.Add(1)

	if rec := s.reset(); rec != nil {
		r.emit(ctx, rec)
	}
}

// readNew reads everything after the session cursor. Lines already fed
// keep the cursor advanced even if a later read fails.
func (r *Reader) readNew(ctx context.Context, s *Session) error {
	lr, err := parser.Open(s.path)
	if err != nil {
		return err
	}
	defer lr.Close()

	if err := r.position(ctx, lr, s); err != nil {
		return err
	}

	asm := s.held
	if asm == nil {
		asm = r.newAssembler(s.path)
	}

	start := s.Cursor()
	for {
		line, err := lr.Next(ctx)
		if err == io.EOF || err == parser.ErrPartialLine {
			break
		}
		if err != nil {
			r.finishPass(ctx, asm)
			return err
		}

		s.advance(lr.Position())
		r.opts.Stats.lines.Add(1)
		r.feed(ctx, s.path, asm, line)
	}

	r.finishPass(ctx, asm)

	if read := s.Cursor() - start; read > 0 {
		r.logger.Trace("read pass complete", "path", s.path, "lines", read, "cursor", s.Cursor())
	}
	return nil
}

// position moves lr to the session cursor, seeking straight to the recorded
// byte offset when the file is still at least that long.
func (r *Reader) position(ctx context.Context, lr *parser.LineReader, s *Session) error {
	if s.Cursor() == 0 {
		return nil
	}

	if s.pos.Offset > 0 {
		if size, err := lr.Size(); err == nil && size >= s.pos.Offset {
			return lr.SeekTo(s.pos)
		}
	}

	skipped, err := lr.Skip(ctx, s.Cursor())
	if err != nil {
		return err
	}
	if skipped < s.Cursor() {
		r.logger.Debug("file shorter than cursor", "path", s.path, "cursor", s.Cursor(), "lines", skipped)
	}
	return nil
}

// ReadAll reads path once from the first line with a fresh assembler and no
// cursor. It returns the number of records emitted.
func (r *Reader) ReadAll(ctx context.Context, path string) (int, error) {
	lr, err := parser.Open(path, parser.WithPartialLines(true))
	if err != nil {
		return 0, err
	}
	defer lr.Close()

	before := r.emitted
	asm := r.newAssembler(path)

	for {
		line, err := lr.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			r.finishFile(ctx, asm)
			return r.emitted - before, err
		}
		r.opts.Stats.lines.Add(1)
		r.feed(ctx, path, asm, line)
	}

	r.finishFile(ctx, asm)
	return r.emitted - before, nil
}

// Close emits every record still held by a session. It is used on shutdown
// with FlushHold.
func (r *Reader) Close(ctx context.Context) {
	for _, s := range r.sessions {
		if s.held == nil {
			continue
		}
		if rec := s.held.Flush(); rec != nil {
			r.emit(ctx, rec)
		}
	}
}

func (r *Reader) newAssembler(path string) *record.Assembler {
	return record.NewAssembler(path, r.opts.AssemblerOptions...)
}

// finishPass applies the flush policy at the end of a read pass.
func (r *Reader) finishPass(ctx context.Context, asm *record.Assembler) {
	switch r.opts.Flush {
	case FlushEndOfRead:
		if rec := asm.Flush(); rec != nil {
			r.emit(ctx, rec)
		}
	case FlushNever:
		if n := asm.Pending(); n > 0 {
			r.logger.Trace("dropping trailing record", "lines", n)
		}
		asm.Reset()
	}
}

// finishFile ends a whole-file read. The file is complete, so the trailing
// record is emitted under every policy except FlushNever.
func (r *Reader) finishFile(ctx context.Context, asm *record.Assembler) {
	if r.opts.Flush == FlushNever {
		asm.Reset()
		return
	}
	if rec := asm.Flush(); rec != nil {
		r.emit(ctx, rec)
	}
}

func (r *Reader) feed(ctx context.Context, path string, asm *record.Assembler, line record.Line) {
	rec, err := asm.Feed(line)
	if rec != nil {
		r.emit(ctx, rec)
	}
	if err != nil {
		r.opts.Stats.lineErrors.Add(1)
		r.reportError(ctx, err, map[string]string{
			telemetry.TagSource:     telemetry.SourceLine,
			telemetry.TagPath:       path,
			telemetry.TagLine:       line.Content,
			telemetry.TagLineNumber: strconv.Itoa(line.Number),
		})
	}
}

func (r *Reader) emit(ctx context.Context, rec *record.Record) {
	r.emitted++
	r.opts.Stats.records.Add(1)
	if err := r.sink.Emit(ctx, rec); err != nil {
		r.reportError(ctx, fmt.Errorf("emitting record: %w", err), map[string]string{
			telemetry.TagSource:     telemetry.SourceEmit,
			telemetry.TagPath:       rec.Path,
			telemetry.TagLineNumber: strconv.Itoa(rec.FirstLine),
		})
	}
}

func (r *Reader) reportReadError(ctx context.Context, path string, err error) {
	r.opts.Stats.readErrors.Add(1)
	r.reportError(ctx, err, map[string]string{
		telemetry.TagSource: telemetry.SourceReader,
		telemetry.TagPath:   path,
	})
}

func (r *Reader) reportError(ctx context.Context, err error, tags map[string]string) {
	r.logger.Warn("log processing error", "error", err, "path", tags[telemetry.TagPath])
	if sinkErr := r.sink.EmitError(ctx, err, tags); sinkErr != nil {
		r.logger.Error("reporting error to telemetry failed", "error", sinkErr, "original", err)
	}
}
