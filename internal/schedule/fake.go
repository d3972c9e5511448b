package schedule

import (
	"sort"
	"time"
)

// FakeClock is a manually advanced clock implementing Timers, for tests
// and for deterministic replay.
type FakeClock struct {
	now    time.Time
	seq    int
	timers []fakeTimer
}

type fakeTimer struct {
	at  time.Time
	seq int
	fn  func()
}

var _ Timers = (*FakeClock)(nil)

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time { return c.now }

func (c *FakeClock) After(d time.Duration, fn func()) {
	c.seq++
	c.timers = append(c.timers, fakeTimer{at: c.now.Add(d), seq: c.seq, fn: fn})
}

// Advance moves the clock forward, firing due timers in deadline order.
func (c *FakeClock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for {
		sort.Slice(c.timers, func(i, j int) bool {
			if c.timers[i].at.Equal(c.timers[j].at) {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].at.Before(c.timers[j].at)
		})
		if len(c.timers) == 0 || c.timers[0].at.After(end) {
			break
		}
		t := c.timers[0]
		c.timers = c.timers[1:]
		c.now = t.at
		t.fn()
	}
	c.now = end
}

// PendingTimers returns the number of unfired timers.
func (c *FakeClock) PendingTimers() int { return len(c.timers) }
