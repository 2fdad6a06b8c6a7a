package store

import (
	"sync/atomic"
	"time"
)

// Clock is the twin's notion of "now": wall time plus an offset that
// /admin/time/advance moves forward. Sessions expire and guestbook
// timestamps are taken against it.
type Clock struct {
	offset atomic.Int64 // nanoseconds
}

func NewClock() *Clock {
	return &Clock{}
}

// Now returns wall time shifted by the offset.
func (c *Clock) Now() time.Time {
	return time.Now().Add(c.Offset())
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.offset.Add(int64(d))
}

// Reset returns the clock to wall time.
func (c *Clock) Reset() {
	c.offset.Store(0)
}

func (c *Clock) Offset() time.Duration {
	return time.Duration(c.offset.Load())
}
