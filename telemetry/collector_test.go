package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/cavernlife/components"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(10, time.Minute)

	for tick := int32(1); tick < 10; tick++ {
		c.Record(1, 2, 0, 1, 0.05)
		if c.ShouldFlush(tick) {
			t.Fatalf("ShouldFlush(%d) = true before window end", tick)
		}
	}
	c.Record(1, 2, 1, 1, 0.05)
	if !c.ShouldFlush(10) {
		t.Fatal("ShouldFlush(10) = false at window end")
	}

	var active [components.NumBehaviorKinds]int
	active[components.BehaviorThirst] = 3
	active[components.BehaviorSeparation] = 1
	active[components.BehaviorCohesion] = 2
	active[components.BehaviorWander] = 4

	stats := c.Flush(10, Sample{
		Alive:        10,
		Dead:         1,
		Algae:        []float64{0, 0.5, 1.0, 0},
		Humidity:     []float64{0.2, 0.4},
		Temperatures: []float64{10, 30},
		Hunger:       []float64{0.1, 0.3},
		Active:       active,
	})

	if stats.Drinks != 10 || stats.Meals != 20 || stats.Deaths != 1 || stats.Blocked != 10 {
		t.Errorf("event counts = %d/%d/%d/%d, want 10/20/1/10", stats.Drinks, stats.Meals, stats.Deaths, stats.Blocked)
	}
	if math.Abs(stats.AlgaeEaten-0.5) > 1e-9 {
		t.Errorf("AlgaeEaten = %v, want 0.5", stats.AlgaeEaten)
	}
	if stats.FloorCoverage != 0.5 {
		t.Errorf("FloorCoverage = %v, want 0.5", stats.FloorCoverage)
	}
	if stats.TempMin != 10 || stats.TempMax != 30 || stats.TempMean != 20 {
		t.Errorf("temperature = %v/%v/%v, want 10/30/20", stats.TempMin, stats.TempMax, stats.TempMean)
	}
	if math.Abs(stats.HungerMean-0.2) > 1e-9 {
		t.Errorf("HungerMean = %v, want 0.2", stats.HungerMean)
	}
	if stats.Drinking != 3 || stats.Flocking != 3 || stats.Wandering != 4 {
		t.Errorf("active = %d/%d/%d, want 3/3/4", stats.Drinking, stats.Flocking, stats.Wandering)
	}
	if stats.WorldHours != 10.0/60 {
		t.Errorf("WorldHours = %v, want %v", stats.WorldHours, 10.0/60)
	}

	// Counters reset
	if c.ShouldFlush(11) {
		t.Error("ShouldFlush(11) = true right after a flush")
	}
	next := c.Flush(20, Sample{})
	if next.Drinks != 0 || next.WindowStartTick != 10 {
		t.Errorf("next window = %+v, want reset counters starting at 10", next)
	}
}

func TestNewCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0, time.Minute)
	if c.WindowSteps() != 1 {
		t.Errorf("WindowSteps() = %d, want 1", c.WindowSteps())
	}
}
