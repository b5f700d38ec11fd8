// Package game runs the cavern simulation: generation, the tick clock and
// the parallel environment and entity passes.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
	"github.com/pthm-cable/cavernlife/systems"
	"github.com/pthm-cable/cavernlife/telemetry"
)

// Options configures a new simulation.
type Options struct {
	Config        *config.Config // nil = config.Cfg()
	Seed          int64
	LogStats      bool
	OutputDir     string
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete world state.
type Simulation struct {
	cfg  *config.Config
	seed int64

	grid     *systems.Grid
	index    *systems.EntityIndex
	rule     *systems.EnvironmentRule
	pipeline *systems.BehaviorPipeline
	clock    *Clock
	parallel *parallelState
	report   systems.GenerationReport

	tick       int32
	lastEvents systems.TickEvents

	selected    ecs.Entity
	hasSelected bool
	planner     *systems.PathPlanner

	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// New generates a cavern, places its population and returns a running
// simulation.
func New(opts Options) (*Simulation, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	species, ok := cfg.SpeciesByName(cfg.Population.Species)
	if !ok {
		return nil, fmt.Errorf("population species %q is not configured", cfg.Population.Species)
	}

	gen := systems.NewCavernGenerator(cfg, opts.Seed)
	grid, report, err := gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating cavern: %w", err)
	}

	index := systems.NewEntityIndex(grid.Width(), grid.Height(), cfg.Behavior.PickRadiusSq)
	report.Placed = gen.Populate(grid, index, species)
	index.Reindex()

	s := &Simulation{
		cfg:              cfg,
		seed:             opts.Seed,
		grid:             grid,
		index:            index,
		rule:             systems.NewEnvironmentRule(cfg),
		pipeline:         systems.NewBehaviorPipeline(cfg),
		clock:            NewClock(cfg.Derived.RealStep, cfg.Derived.SimStep),
		parallel:         newParallelState(cfg.Parallel.Workers, cfg.Parallel.Threshold, opts.Seed),
		report:           report,
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.SimStep),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	s.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}
	if err := s.outputManager.WriteGeneration(GenerationRecord(report)); err != nil {
		slog.Error("failed to write generation report", "error", err)
	}

	slog.Info("cavern generated", "report", report)
	return s, nil
}

// Close stops the worker pool and flushes output files.
func (s *Simulation) Close() error {
	s.stopParallelWorkers()
	return s.outputManager.Close()
}

// Tick feeds elapsed real time to the clock and performs at most one
// simulated step. It reports whether a step ran. Calls that do not reach
// the step threshold leave cells and entities untouched.
func (s *Simulation) Tick(elapsed time.Duration) bool {
	if !s.clock.Advance(elapsed) {
		return false
	}
	s.step()
	return true
}

// step runs one simulated step: environment pass, buffer swap, entity
// pass, reindex and telemetry.
func (s *Simulation) step() {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseEnvironment)
	h := s.grid.Height()
	s.parallel.run(s, passEnvironment, h, s.grid.Len())
	s.grid.Swap()

	s.perfCollector.StartPhase(telemetry.PhaseEntities)
	n := s.index.Len()
	s.lastEvents = s.parallel.run(s, passEntities, n, n)

	s.perfCollector.StartPhase(telemetry.PhaseSpatial)
	s.index.Reindex()

	s.tick++
	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.collector.Record(s.lastEvents.Drinks, s.lastEvents.Meals, s.lastEvents.Deaths, s.lastEvents.Blocked, s.lastEvents.AlgaeEaten)
	s.flushTelemetry()

	s.perfCollector.EndTick()
}

// Pause stops the clock between ticks.
func (s *Simulation) Pause() { s.clock.Pause() }

// Run resumes the clock.
func (s *Simulation) Run() { s.clock.Run() }

// Step schedules exactly one simulated step on the next Tick.
func (s *Simulation) Step() { s.clock.Step() }

// Running reports whether the clock is accumulating real time.
func (s *Simulation) Running() bool { return s.clock.Running() }

// Ticks returns the number of simulated steps taken.
func (s *Simulation) Ticks() int32 { return s.tick }

// WorldTime returns simulated time since generation.
func (s *Simulation) WorldTime() time.Duration { return s.clock.WorldTime() }

// Seed returns the master seed.
func (s *Simulation) Seed() int64 { return s.seed }

// Report returns the generation summary.
func (s *Simulation) Report() systems.GenerationReport { return s.report }

// LastEvents returns what entities did during the latest step.
func (s *Simulation) LastEvents() systems.TickEvents { return s.lastEvents }

// Size returns the grid dimensions.
func (s *Simulation) Size() (width, height int) { return s.grid.Width(), s.grid.Height() }

// Cell returns a copy of the cell at (x, y).
func (s *Simulation) Cell(x, y int) (components.Cell, error) { return s.grid.At(x, y) }

// Cells returns a row-major copy of every cell.
func (s *Simulation) Cells() []components.Cell { return s.grid.Snapshot() }

// Entities returns a copy of every entity's state, dead ones included.
func (s *Simulation) Entities() []systems.EntitySnapshot { return s.index.Snapshot() }

// MovementBlockedAt reports whether pos lies outside the grid or in an
// impassable cell.
func (s *Simulation) MovementBlockedAt(pos r2.Vec) bool { return s.grid.MovementBlockedAt(pos) }

// SetAlgaeLevel sets the algae of a floor cell, clamped to [0,1]. Other
// kinds are ignored. Call between ticks.
func (s *Simulation) SetAlgaeLevel(x, y int, level float64) error {
	return s.grid.SetAlgae(x, y, level)
}

// EntityAt returns the first entity within pick range of pos.
func (s *Simulation) EntityAt(pos r2.Vec) (systems.EntitySnapshot, bool) {
	return s.index.EntityAt(pos)
}

// EntitiesInArea returns entities within radius of pos. An empty species
// matches all.
func (s *Simulation) EntitiesInArea(pos r2.Vec, radius float64, species string) []systems.EntitySnapshot {
	return s.index.EntitiesInArea(pos, radius, species)
}

// PathBetween returns the cell centers of a least-cost walkable route from
// one position to another, or nil when either end is blocked or no route
// exists. Call between ticks.
func (s *Simulation) PathBetween(from, to r2.Vec) []r2.Vec {
	if s.planner == nil {
		s.planner = systems.NewPathPlanner(s.grid)
	}
	cells := s.planner.FindPath(systems.PointAt(from), systems.PointAt(to))
	if cells == nil {
		return nil
	}
	out := make([]r2.Vec, len(cells))
	for i, p := range cells {
		out[i] = p.Center()
	}
	return out
}
