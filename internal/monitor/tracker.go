package monitor

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// OperationType names a timed stage of a command
type OperationType string

const (
	OperationRead     OperationType = "read"
	OperationDownload OperationType = "download"
	OperationClassify OperationType = "classify"
	OperationSearch   OperationType = "search"
	OperationPoll     OperationType = "poll"
)

// OperationStats is the summary of one operation's timer
type OperationStats struct {
	Operation OperationType `json:"operation"`
	Count     int64         `json:"count"`
	Errors    int64         `json:"errors"`
	Total     time.Duration `json:"total_ns"`
	Min       time.Duration `json:"min_ns"`
	Max       time.Duration `json:"max_ns"`
	Avg       time.Duration `json:"avg_ns"`
}

// Snapshot is a point-in-time view of a tracker
type Snapshot struct {
	Elapsed        time.Duration    `json:"elapsed_ns"`
	Lines          int64            `json:"lines"`
	Bytes          int64            `json:"bytes"`
	LinesPerSecond float64          `json:"lines_per_second"`
	Operations     []OperationStats `json:"operations"`
}

// Tracker times the stages of one command run and counts the lines and
// bytes it processed. It is safe for concurrent use.
type Tracker struct {
	started time.Time
	lines   *Counter
	bytes   *Counter

	mu     sync.Mutex
	timers map[OperationType]*Timer
}

// NewTracker starts a tracker
func NewTracker() *Tracker {
	return &Tracker{
		started: time.Now(),
		lines:   NewCounter("lines"),
		bytes:   NewCounter("bytes"),
		timers:  make(map[OperationType]*Timer),
	}
}

func (t *Tracker) timer(op OperationType) *Timer {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.timers[op]
	if !ok {
		timer = NewTimer(string(op))
		t.timers[op] = timer
	}
	return timer
}

// Track runs fn and records its duration under op
func (t *Tracker) Track(op OperationType, fn func() error) error {
	start := time.Now()
	err := fn()

	timer := t.timer(op)
	timer.Record(time.Since(start))
	if err != nil {
		timer.Fail()
	}
	return err
}

// RecordLines adds to the processed line count
func (t *Tracker) RecordLines(n int) {
	t.lines.Add(int64(n))
}

// RecordBytes adds to the processed byte count
func (t *Tracker) RecordBytes(n int) {
	t.bytes.Add(int64(n))
}

// Snapshot returns the current totals, operations sorted by name
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Elapsed: time.Since(t.started),
		Lines:   t.lines.Get(),
		Bytes:   t.bytes.Get(),
	}
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.LinesPerSecond = float64(s.Lines) / secs
	}

	t.mu.Lock()
	for op, timer := range t.timers {
		s.Operations = append(s.Operations, OperationStats{
			Operation: op,
			Count:     timer.Count(),
			Errors:    timer.Errors(),
			Total:     timer.TotalTime(),
			Min:       timer.MinTime(),
			Max:       timer.MaxTime(),
			Avg:       timer.AvgTime(),
		})
	}
	t.mu.Unlock()

	sort.Slice(s.Operations, func(i, j int) bool {
		return s.Operations[i].Operation < s.Operations[j].Operation
	})
	return s
}

// WriteReport prints a short timing table
func (s Snapshot) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Processed %d lines (%d bytes) in %s, %.0f lines/s\n",
		s.Lines, s.Bytes, s.Elapsed.Round(time.Microsecond), s.LinesPerSecond); err != nil {
		return err
	}
	for _, op := range s.Operations {
		line := fmt.Sprintf("  %-9s runs=%d total=%s avg=%s max=%s",
			op.Operation, op.Count,
			op.Total.Round(time.Microsecond), op.Avg.Round(time.Microsecond), op.Max.Round(time.Microsecond))
		if op.Errors > 0 {
			line += fmt.Sprintf(" errors=%d", op.Errors)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
