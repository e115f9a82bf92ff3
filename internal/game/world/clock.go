package world

import "time"

// maxCatchUp bounds the ticks run for one frame after a stall.
const maxCatchUp = 5

// Clock turns variable frame times into whole fixed ticks.
type Clock struct {
	step    time.Duration
	pending time.Duration
}

// NewClock creates a clock running rate ticks per second.
func NewClock(rate int) *Clock {
	if rate <= 0 {
		rate = 60
	}
	return &Clock{step: time.Second / time.Duration(rate)}
}

// Step returns the duration of one tick.
func (c *Clock) Step() time.Duration {
	return c.step
}

// Advance adds elapsed time and returns how many ticks are due. Time beyond
// maxCatchUp ticks is dropped.
func (c *Clock) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		c.pending += elapsed
	}
	n := int(c.pending / c.step)
	if n > maxCatchUp {
		n = maxCatchUp
		c.pending = 0
		return n
	}
	c.pending -= time.Duration(n) * c.step
	return n
}
