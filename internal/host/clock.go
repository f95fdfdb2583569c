package host

import "time"

// Clock turns wall time into frame deltas in seconds. A delta never exceeds
// maxDelta and never goes negative, so a stalled process does not make the
// simulation jump.
type Clock struct {
	maxDelta float64
	now      func() time.Time
	last     time.Time
	started  bool
}

func NewClock(maxDelta float64) *Clock {
	return &Clock{maxDelta: maxDelta, now: time.Now}
}

// Tick returns the time since the previous Tick. The first call returns 0.
func (c *Clock) Tick() float64 {
	now := c.now()
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return clampDelta(dt, c.maxDelta)
}

// Reset makes the next Tick start over, e.g. after a pause.
func (c *Clock) Reset() {
	c.started = false
}

func (c *Clock) SetMaxDelta(maxDelta float64) {
	c.maxDelta = maxDelta
}

func clampDelta(dt, maxDelta float64) float64 {
	if dt < 0 {
		return 0
	}
	if maxDelta > 0 && dt > maxDelta {
		return maxDelta
	}
	return dt
}
