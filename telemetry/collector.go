// Package telemetry provides window statistics, perf timing, bookmarks and
// CSV run output.
package telemetry

import (
	"time"

	"github.com/pthm-cable/cavernlife/components"
)

// Collector accumulates events within windows of simulated steps and
// produces WindowStats.
type Collector struct {
	windowSteps int32
	simStep     time.Duration

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	drinks     int
	meals      int
	deaths     int
	blocked    int
	algaeEaten float64
}

// NewCollector creates a new stats collector.
// windowSteps: how many simulated steps each stats window lasts
// simStep: simulated time per step (used for tick-to-time conversion)
func NewCollector(windowSteps int, simStep time.Duration) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps: int32(windowSteps),
		simStep:     simStep,
	}
}

// Record adds one step's entity events to the current window.
func (c *Collector) Record(drinks, meals, deaths, blocked int, algaeEaten float64) {
	c.drinks += drinks
	c.meals += meals
	c.deaths += deaths
	c.blocked += blocked
	c.algaeEaten += algaeEaten
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowSteps
}

// Sample is the world state captured at the end of a window.
type Sample struct {
	Alive, Dead int

	// Per floor cell
	Algae []float64

	// Per cell, walls and border included
	Humidity     []float64
	Temperatures []float64

	// Per living entity
	Hunger []float64
	Thirst []float64
	Active [components.NumBehaviorKinds]int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample Sample) WindowStats {
	algaeMean, algaeStd, p10, p50, p90 := ComputeDistribution(sample.Algae)
	tempMin, tempMax := RangeOf(sample.Temperatures)

	var covered int
	for _, a := range sample.Algae {
		if a > 0 {
			covered++
		}
	}
	var coverage float64
	if len(sample.Algae) > 0 {
		coverage = float64(covered) / float64(len(sample.Algae))
	}

	active := sample.Active
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		WorldHours:      (time.Duration(currentTick) * c.simStep).Hours(),

		Alive: sample.Alive,
		Dead:  sample.Dead,

		Drinks:     c.drinks,
		Meals:      c.meals,
		Deaths:     c.deaths,
		Blocked:    c.blocked,
		AlgaeEaten: c.algaeEaten,

		AlgaeMean:     algaeMean,
		AlgaeStd:      algaeStd,
		AlgaeP10:      p10,
		AlgaeP50:      p50,
		AlgaeP90:      p90,
		FloorCoverage: coverage,

		HumidityMean: MeanOf(sample.Humidity),
		TempMean:     MeanOf(sample.Temperatures),
		TempMin:      tempMin,
		TempMax:      tempMax,

		HungerMean: MeanOf(sample.Hunger),
		ThirstMean: MeanOf(sample.Thirst),

		Idle:      active[components.BehaviorNone],
		Drinking:  active[components.BehaviorThirst],
		Eating:    active[components.BehaviorHunger],
		Flocking:  active[components.BehaviorSeparation] + active[components.BehaviorAlignment] + active[components.BehaviorCohesion],
		Wandering: active[components.BehaviorWander],
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.drinks = 0
	c.meals = 0
	c.deaths = 0
	c.blocked = 0
	c.algaeEaten = 0

	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int32 {
	return c.windowSteps
}
