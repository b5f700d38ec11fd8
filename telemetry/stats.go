package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of simulated steps.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	WorldHours      float64 `csv:"world_hours"`

	// Population at window end
	Alive int `csv:"alive"`
	Dead  int `csv:"dead"`

	// Events during window
	Drinks     int     `csv:"drinks"`
	Meals      int     `csv:"meals"`
	Deaths     int     `csv:"deaths"`
	Blocked    int     `csv:"blocked"`
	AlgaeEaten float64 `csv:"algae_eaten"`

	// Algae distribution over floor cells (sampled at window end)
	AlgaeMean     float64 `csv:"algae_mean"`
	AlgaeStd      float64 `csv:"algae_std"`
	AlgaeP10      float64 `csv:"algae_p10"`
	AlgaeP50      float64 `csv:"algae_p50"`
	AlgaeP90      float64 `csv:"algae_p90"`
	FloorCoverage float64 `csv:"floor_coverage"` // fraction of floor cells holding algae

	// Climate
	HumidityMean float64 `csv:"humidity_mean"`
	TempMean     float64 `csv:"temp_mean"`
	TempMin      float64 `csv:"temp_min"`
	TempMax      float64 `csv:"temp_max"`

	// Needs of living entities
	HungerMean float64 `csv:"hunger_mean"`
	ThirstMean float64 `csv:"thirst_mean"`

	// Active behavior of living entities at window end
	Idle      int `csv:"idle"`
	Drinking  int `csv:"drinking"`
	Eating    int `csv:"eating"`
	Flocking  int `csv:"flocking"`
	Wandering int `csv:"wandering"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// MeanOf returns the mean of values, or 0 when empty.
func MeanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// RangeOf returns the minimum and maximum of values, or zeros when empty.
func RangeOf(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("world_hours", s.WorldHours),
		slog.Int("alive", s.Alive),
		slog.Int("dead", s.Dead),
		slog.Int("drinks", s.Drinks),
		slog.Int("meals", s.Meals),
		slog.Int("deaths", s.Deaths),
		slog.Int("blocked", s.Blocked),
		slog.Float64("algae_eaten", s.AlgaeEaten),
		slog.Float64("algae_mean", s.AlgaeMean),
		slog.Float64("algae_std", s.AlgaeStd),
		slog.Float64("algae_p10", s.AlgaeP10),
		slog.Float64("algae_p50", s.AlgaeP50),
		slog.Float64("algae_p90", s.AlgaeP90),
		slog.Float64("floor_coverage", s.FloorCoverage),
		slog.Float64("humidity_mean", s.HumidityMean),
		slog.Float64("temp_mean", s.TempMean),
		slog.Float64("temp_min", s.TempMin),
		slog.Float64("temp_max", s.TempMax),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("thirst_mean", s.ThirstMean),
		slog.Int("idle", s.Idle),
		slog.Int("drinking", s.Drinking),
		slog.Int("eating", s.Eating),
		slog.Int("flocking", s.Flocking),
		slog.Int("wandering", s.Wandering),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"world_hours", s.WorldHours,
		"alive", s.Alive,
		"dead", s.Dead,
		"drinks", s.Drinks,
		"meals", s.Meals,
		"deaths", s.Deaths,
		"blocked", s.Blocked,
		"algae_eaten", s.AlgaeEaten,
		"algae_mean", s.AlgaeMean,
		"algae_p50", s.AlgaeP50,
		"floor_coverage", s.FloorCoverage,
		"humidity_mean", s.HumidityMean,
		"temp_mean", s.TempMean,
		"hunger_mean", s.HungerMean,
		"thirst_mean", s.ThirstMean,
		"drinking", s.Drinking,
		"eating", s.Eating,
		"flocking", s.Flocking,
		"wandering", s.Wandering,
	)
}
