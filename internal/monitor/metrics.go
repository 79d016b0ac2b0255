package monitor

import (
	"math"
	"sync/atomic"
	"time"
)

// Counter is a thread-safe counter metric
type Counter struct {
	value atomic.Int64
	name  string
}

// NewCounter creates a new counter metric
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds the given value to the counter
func (c *Counter) Add(value int64) {
	c.value.Add(value)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return c.value.Load()
}

// Reset resets the counter to 0
func (c *Counter) Reset() {
	c.value.Store(0)
}

// Name returns the counter name
func (c *Counter) Name() string {
	return c.name
}

const noMin = math.MaxInt64

// Timer accumulates durations of one operation
type Timer struct {
	count  atomic.Int64
	errors atomic.Int64
	total  atomic.Int64
	min    atomic.Int64
	max    atomic.Int64
	name   string
}

// NewTimer creates a new timer metric
func NewTimer(name string) *Timer {
	t := &Timer{name: name}
	t.min.Store(noMin)
	return t
}

// Record records a duration measurement
func (t *Timer) Record(d time.Duration) {
	nanos := d.Nanoseconds()
	t.count.Add(1)
	t.total.Add(nanos)

	for {
		current := t.min.Load()
		if nanos >= current || t.min.CompareAndSwap(current, nanos) {
			break
		}
	}
	for {
		current := t.max.Load()
		if nanos <= current || t.max.CompareAndSwap(current, nanos) {
			break
		}
	}
}

// Fail counts a failed run of the operation
func (t *Timer) Fail() {
	t.errors.Add(1)
}

// Count returns the number of recorded measurements
func (t *Timer) Count() int64 {
	return t.count.Load()
}

// Errors returns how many runs failed
func (t *Timer) Errors() int64 {
	return t.errors.Load()
}

// TotalTime returns the total time of all measurements
func (t *Timer) TotalTime() time.Duration {
	return time.Duration(t.total.Load())
}

// MinTime returns the minimum recorded time
func (t *Timer) MinTime() time.Duration {
	m := t.min.Load()
	if m == noMin {
		return 0
	}
	return time.Duration(m)
}

// MaxTime returns the maximum recorded time
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(t.max.Load())
}

// AvgTime returns the average time of all measurements
func (t *Timer) AvgTime() time.Duration {
	count := t.count.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(t.total.Load() / count)
}

// Reset resets all timer metrics
func (t *Timer) Reset() {
	t.count.Store(0)
	t.errors.Store(0)
	t.total.Store(0)
	t.min.Store(noMin)
	t.max.Store(0)
}

// Name returns the timer name
func (t *Timer) Name() string {
	return t.name
}
