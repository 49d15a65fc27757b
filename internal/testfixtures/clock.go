package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source shared by services under test.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock starts a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start.UTC()}
}

// Now reports the clock's instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// NowFunc returns Now for injection into service constructors. A nil clock
// falls back to the wall clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceDays moves the clock forward by whole calendar days.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, days)
	return c.now
}

// DateIn formats the calendar date days after the clock's current day as
// YYYY-MM-DD, the wire form of event and suggestion dates.
func (c *Clock) DateIn(days int) string {
	return c.Now().AddDate(0, 0, days).Format(time.DateOnly)
}
