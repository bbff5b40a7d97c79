package tailer

import "sync/atomic"

// Stats counts tailer activity. It is shared by every worker of a Dispatcher.
type Stats struct {
	lines      atomic.Int64
	records    atomic.Int64
	lineErrors atomic.Int64
	readErrors atomic.Int64
	resets     atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Lines      int64
	Records    int64
	LineErrors int64
	ReadErrors int64
	Resets     int64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Lines:      s.lines.Load(),
		Records:    s.records.Load(),
		LineErrors: s.lineErrors.Load(),
		ReadErrors: s.readErrors.Load(),
		Resets:     s.resets.Load(),
	}
}
