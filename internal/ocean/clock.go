package ocean

// SimulationClock decouples the wave simulation cadence from the render
// frame rate. It is frame-driven and single-threaded: call Advance once
// per rendered frame and step the simulation when it reports true.
type SimulationClock struct {
	rate       float32 // updates per second, 0 = step every frame
	time       float64 // accumulated simulated time
	nextUpdate float64 // threshold for the next step
	lastStep   float64 // time at the most recent step
}

// NewSimulationClock returns a clock stepping at rate updates per second.
// A rate of 0 steps every frame with the raw frame delta.
func NewSimulationClock(rate float32) *SimulationClock {
	return &SimulationClock{rate: rate}
}

// Rate returns the configured update rate.
func (c *SimulationClock) Rate() float32 {
	return c.rate
}

// SetRate changes the update rate while preserving phase: the pending
// threshold is shifted by the difference between the old and new period
// so the transition neither double-steps nor stalls.
func (c *SimulationClock) SetRate(rate float32) {
	if rate == c.rate {
		return
	}
	switch {
	case rate == 0:
		// Threshold is unused while stepping every frame.
	case c.rate == 0:
		c.nextUpdate = c.time + 1.0/float64(rate)
	case c.nextUpdate != 0:
		c.nextUpdate += 1.0/float64(rate) - 1.0/float64(c.rate)
	}
	c.rate = rate
}

// Advance accumulates a frame delta and reports whether a simulation step
// is due. Thresholds advance on a fixed period grid anchored at the first
// step, so overshoot from coarse frames never stretches the step interval
// and the long-run step count tracks rate times elapsed time. The
// returned step delta is the wall time elapsed since the previous step;
// the step deltas sum to elapsed time under any frame chunking.
func (c *SimulationClock) Advance(frameDelta float32) (stepDelta float32, stepped bool) {
	c.time += float64(frameDelta)

	if c.rate == 0 {
		c.lastStep = c.time
		return frameDelta, true
	}
	if c.time < c.nextUpdate {
		return 0, false
	}

	period := 1.0 / float64(c.rate)
	delta := c.time - c.lastStep
	c.lastStep = c.time

	if c.nextUpdate == 0 {
		// The first step anchors the grid.
		c.nextUpdate = c.time + period
	} else {
		c.nextUpdate += period
		// A frame longer than the period leaves the threshold behind
		// wall time. Cap the lag at one period so a stall is not
		// replayed as a burst of catch-up steps.
		if c.time-c.nextUpdate > period {
			c.nextUpdate = c.time - period
		}
	}
	return float32(delta), true
}
