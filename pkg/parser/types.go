// Package parser reads physical lines from log files that other processes
// are still writing, renaming or deleting.
package parser

import "errors"

// ErrPartialLine is returned by Next when the remaining data is an
// unterminated line and the reader was not told to accept it.
var ErrPartialLine = errors.New("unterminated trailing line")

// Position identifies a point in a file both by line count and byte offset.
type Position struct {
	// Lines is the number of complete lines before this point.
	Lines int

	// Offset is the byte offset of this point.
	Offset int64
}
