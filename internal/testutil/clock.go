package testutil

import "sync"

// DeterministicClock stamps trace events with sequence numbers.
//
// Sequence numbers order events within a scenario run. Wall-clock time is
// never used, so repeated runs of the same scenario produce identical traces.
//
// Thread-safety: safe for concurrent use; interceptors may record from any
// goroutine.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock whose first Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last issued sequence number, or 0.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}
