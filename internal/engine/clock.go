package engine

import "sync/atomic"

// Clock is a monotonic logical clock stamping mutation passes.
//
// Every mutation record carries a strictly increasing seq so traces,
// golden files, and journal rows order identically across runs without
// wall-clock races.
//
// Thread-safety: atomic; in practice only the event-loop goroutine
// calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
