package game

import "time"

// Clock converts elapsed real time into fixed simulated steps. Real time
// accumulates only while running; once it reaches the threshold one step is
// taken and the accumulator resets.
type Clock struct {
	threshold   time.Duration
	step        time.Duration
	accumulated time.Duration
	worldTime   time.Duration
	running     bool
	stepPending bool
}

// NewClock creates a running clock.
func NewClock(threshold, step time.Duration) *Clock {
	return &Clock{threshold: threshold, step: step, running: true}
}

// Advance feeds elapsed real time and reports whether a simulated step is
// due. World time advances by one step when it is.
func (c *Clock) Advance(elapsed time.Duration) bool {
	if c.stepPending {
		c.stepPending = false
		c.worldTime += c.step
		return true
	}
	if !c.running {
		return false
	}
	c.accumulated += elapsed
	if c.accumulated < c.threshold {
		return false
	}
	c.accumulated = 0
	c.worldTime += c.step
	return true
}

// Pause stops accumulating real time.
func (c *Clock) Pause() { c.running = false }

// Run resumes accumulating real time.
func (c *Clock) Run() { c.running = true }

// Step forces exactly one simulated step on the next Advance, running or not.
func (c *Clock) Step() { c.stepPending = true }

// Running reports whether the clock accumulates real time.
func (c *Clock) Running() bool { return c.running }

// WorldTime returns the simulated time elapsed since generation.
func (c *Clock) WorldTime() time.Duration { return c.worldTime }

// StepSize returns the simulated duration of one step.
func (c *Clock) StepSize() time.Duration { return c.step }

// HourOfDay returns the fractional simulated hour in [0, 24).
func (c *Clock) HourOfDay() float64 {
	day := 24 * time.Hour
	return float64(c.worldTime%day) / float64(time.Hour)
}
