package sim

import "time"

// Clock supplies the dt for each step.
type Clock interface {
	Next() float32
}

// FixedClock returns the same dt every step.
type FixedClock float32

func (c FixedClock) Next() float32 { return float32(c) }

// MeasuredClock returns the wall time elapsed since the previous call,
// multiplied by Scale and capped at Max so a stalled frame cannot produce
// one huge step.
type MeasuredClock struct {
	Scale float32
	Max   float32

	now  func() time.Time
	last time.Time
}

func NewMeasuredClock(scale, max float32) *MeasuredClock {
	return &MeasuredClock{Scale: scale, Max: max, now: time.Now}
}

func (c *MeasuredClock) Next() float32 {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	dt := float32(t.Sub(c.last).Seconds()) * c.Scale
	c.last = t
	if c.Max > 0 && dt > c.Max {
		dt = c.Max
	}
	return dt
}
