// Package clock abstracts wall time so timing reports can be tested.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock returns CurrentTime until advanced. Not safe for concurrent Advance.
type MockClock struct {
	CurrentTime time.Time
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Stopwatch measures consecutive phases against a Clock.
type Stopwatch struct {
	clock Clock
	start time.Time
	last  time.Time
}

// NewStopwatch starts a stopwatch at the clock's current time.
func NewStopwatch(c Clock) *Stopwatch {
	now := c.Now()
	return &Stopwatch{clock: c, start: now, last: now}
}

// Lap returns the time since the previous Lap (or since start) and resets the lap marker.
func (s *Stopwatch) Lap() time.Duration {
	now := s.clock.Now()
	d := now.Sub(s.last)
	s.last = now
	return d
}

// Elapsed returns the time since the stopwatch was started.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}
