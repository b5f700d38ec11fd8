package game

import (
	"log/slog"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/systems"
	"github.com/pthm-cable/cavernlife/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sample())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sample captures the grid and population state for a stats window.
func (s *Simulation) sample() telemetry.Sample {
	cells := s.grid.Cells()
	out := telemetry.Sample{
		Humidity:     make([]float64, 0, len(cells)),
		Temperatures: make([]float64, 0, len(cells)),
	}

	for i := range cells {
		c := &cells[i]
		out.Humidity = append(out.Humidity, c.Humidity)
		out.Temperatures = append(out.Temperatures, c.Temperature)
		if c.Kind == components.KindFloor {
			out.Algae = append(out.Algae, c.Algae)
		}
	}

	for _, a := range s.index.Agents() {
		if a.Vitals.Dead {
			out.Dead++
			continue
		}
		out.Alive++
		out.Hunger = append(out.Hunger, a.Vitals.Hunger)
		out.Thirst = append(out.Thirst, a.Vitals.Thirst)
		if k := int(a.Mind.Active); k < components.NumBehaviorKinds {
			out.Active[k]++
		}
	}
	return out
}

// GenerationRecord flattens a generation report for CSV output.
func GenerationRecord(r systems.GenerationReport) telemetry.GenerationRecord {
	return telemetry.GenerationRecord{
		Seed:             r.Seed,
		Width:            r.Width,
		Height:           r.Height,
		FillMode:         r.FillMode,
		WallRegions:      r.WallRegions,
		FloorRegions:     r.FloorRegions,
		CulledWalls:      r.CulledWalls,
		CulledFloors:     r.CulledFloors,
		Passages:         r.Passages,
		FloorCells:       r.FloorCells,
		WallCells:        r.WallCells,
		WaterCells:       r.WaterCells,
		UnreachableFloor: r.UnreachableFloor,
		Placed:           r.Placed,
	}
}
