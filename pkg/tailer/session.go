package tailer

import (
	"github.com/ccollicutt/logaroo/pkg/parser"
	"github.com/ccollicutt/logaroo/pkg/record"
)

// Session is the tailing state of one path.
type Session struct {
	path string

	// pos.Lines is the cursor: lines consumed since the last reset.
	// pos.Offset is the byte offset right after those lines.
	pos parser.Position

	// held is only used with FlushHold.
	held *record.Assembler
}

func newSession(path string) *Session {
	return &Session{path: path}
}

// Path returns the watched path.
func (s *Session) Path() string {
	return s.path
}

// Cursor returns the number of lines consumed since the last reset.
func (s *Session) Cursor() int {
	return s.pos.Lines
}

// Pending returns the number of lines buffered in a held record.
func (s *Session) Pending() int {
	if s.held == nil {
		return 0
	}
	return s.held.Pending()
}

// advance moves the cursor forward. Positions never move backwards here.
func (s *Session) advance(pos parser.Position) {
	if pos.Lines > s.pos.Lines {
		s.pos = pos
	}
}

// reset zeroes the cursor and returns any held record.
func (s *Session) reset() *record.Record {
	s.pos = parser.Position{}
	if s.held == nil {
		return nil
	}
	return s.held.Flush()
}
