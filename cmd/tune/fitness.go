package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/cavernlife/config"
	"github.com/pthm-cable/cavernlife/game"
	"github.com/pthm-cable/cavernlife/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	parallel   int

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, parallel int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		parallel:   parallel,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // steps before collapse (or maxTicks if it held)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(fe.parallel)
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(x, seed)
			if err != nil {
				// Unusable caverns score as an immediate collapse
				slog.Warn("run failed", "seed", seed, "error", err)
				return nil
			}
			quality := computeQuality(r.windowStats)
			results[i] = seedResult{
				fitness: computeFitness(r.survivalTicks, quality),
				quality: quality,
			}
			return nil
		})
	}
	_ = g.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until the population dies
// out, the algae vanishes, or maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Parallel.Workers = 1

	result := &runResult{}
	collapsed := false
	sim, err := game.New(game.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
			if stats.Alive == 0 || stats.FloorCoverage == 0 {
				collapsed = true
			}
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	for sim.Ticks() < fe.maxTicks && !collapsed {
		sim.Tick(cfg.Derived.RealStep)
	}
	result.survivalTicks = sim.Ticks()
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func computeFitness(survivalTicks int32, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightCoverage  = 0.35
	qualityWeightStability = 0.35
	qualityWeightNeeds     = 0.30

	qualityWarmupWindows = 3    // skip first N windows (warmup)
	targetCoverage       = 0.30 // fraction of floor holding algae
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var coverageSum, needsSum float64
	alive := make([]float64, 0, len(valid))
	algae := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Alive == 0 {
			continue
		}
		alive = append(alive, float64(w.Alive))
		algae = append(algae, w.AlgaeMean)

		logErr := math.Log(math.Max(w.FloorCoverage, 1e-3) / targetCoverage)
		coverageSum += math.Exp(-logErr * logErr)

		// Needs near zero are healthy, near one mean entities are failing
		needsSum += 1 - (w.HungerMean+w.ThirstMean)/2
	}

	if len(alive) == 0 {
		return 0
	}
	n := float64(len(alive))

	stabilityScore := 0.0
	if len(alive) >= 2 {
		cvAlive := cv(alive)
		cvAlgae := cv(algae)
		stabilityScore = math.Exp(-(cvAlive*cvAlive + cvAlgae*cvAlgae))
	}

	quality := qualityWeightCoverage*coverageSum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightNeeds*needsSum/n

	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
