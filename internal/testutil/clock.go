package testutil

// SeqClock is a monotonic logical clock for scenario traces.
//
// Every trace event takes exactly one tick, so identical scenarios produce
// identical seq values and byte-identical golden files.
//
// Not safe for concurrent use; the harness drives it from a single goroutine.
type SeqClock struct {
	seq int64
}

// NewSeqClock creates a clock starting at 0. The first call to Next returns 1.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next increments and returns the next sequence number.
func (c *SeqClock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *SeqClock) Current() int64 {
	return c.seq
}

// Reset rewinds the clock so the next call to Next returns 1 again.
func (c *SeqClock) Reset() {
	c.seq = 0
}
