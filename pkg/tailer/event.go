// Package tailer incrementally reads growing log files, reassembles their
// records and hands them to a telemetry sink.
//
// Each watched path has a Session holding its line cursor. A Reader owns the
// sessions of the paths routed to it and must only be used from one
// goroutine; the Dispatcher routes every path to exactly one Reader so all
// notifications for a path are handled in order.
package tailer

import "fmt"

// Kind is the type of filesystem change behind a notification.
type Kind int

const (
	Created Kind = iota + 1
	Changed
	Renamed
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Changed:
		return "changed"
	case Renamed:
		return "renamed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one filesystem notification for a full path.
type Event struct {
	Kind Kind
	Path string
}

// Mode selects how notifications are turned into reads.
type Mode string

const (
	// ModeTail follows the active file with a line cursor.
	ModeTail Mode = "tail"

	// ModeBulk reads each newly created (rotated) file once from the start.
	ModeBulk Mode = "bulk"
)

// FlushPolicy decides what happens to the record still buffered when a
// read pass reaches the end of the file.
type FlushPolicy string

const (
	// FlushEndOfRead emits the buffered record at the end of every pass.
	FlushEndOfRead FlushPolicy = "end_of_read"

	// FlushHold keeps the buffered record in the session until the next
	// boundary line, a reset, or shutdown.
	FlushHold FlushPolicy = "hold"

	// FlushNever drops the buffered record at the end of every pass.
	FlushNever FlushPolicy = "never"
)
