package testutil

import (
	"sync"
	"time"
)

// FixedClock is a settable clock for tests.
//
// Month-only date filters read the current year from a clock. Pinning it
// keeps those tests stable across the new year.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at now, converted to UTC.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now.UTC()}
}

// ClockAt is NewFixedClock for a calendar date at midnight UTC.
func ClockAt(year int, month time.Month, day int) *FixedClock {
	return NewFixedClock(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Now returns the pinned time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
