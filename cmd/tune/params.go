package main

import (
	"github.com/pthm-cable/cavernlife/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Algae rule (birth_max locked to survive_max)
			{Name: "survive_min", Path: "algae.survive_min", Min: 1.0, Max: 4.0, Default: 2.5},
			{Name: "survive_max", Path: "algae.survive_max", Min: 3.0, Max: 7.0, Default: 4.5},
			{Name: "birth_min", Path: "algae.birth_min", Min: 2.0, Max: 5.0, Default: 3.5},
			{Name: "growth_delta", Path: "algae.growth_delta", Min: 0.01, Max: 0.3, Default: 0.1},
			{Name: "temperature_damping", Path: "algae.temperature_damping", Min: 0.0, Max: 1.0, Default: 0.8},
			{Name: "spontaneous_chance", Path: "algae.spontaneous_chance", Min: 0.0, Max: 0.05, Default: 0.01},
			// Climate
			{Name: "humidity_decay", Path: "climate.humidity_decay", Min: 0.95, Max: 1.0, Default: 0.999},
			// Needs
			{Name: "eat_speed", Path: "behavior.eat_speed", Min: 0.02, Max: 0.3, Default: 0.1},
			{Name: "food_factor", Path: "behavior.food_factor", Min: 0.05, Max: 1.0, Default: 0.2},
			{Name: "metabolism", Path: "species[0].metabolism", Min: 0.00002, Max: 0.0005, Default: 0.0001},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	i := 0
	next := func() float64 {
		v := clamped[i]
		i++
		return v
	}

	cfg.Algae.SurviveMin = next()
	cfg.Algae.SurviveMax = max(next(), cfg.Algae.SurviveMin)
	cfg.Algae.BirthMin = next()
	cfg.Algae.BirthMax = max(cfg.Algae.SurviveMax, cfg.Algae.BirthMin)
	cfg.Algae.GrowthDelta = next()
	cfg.Algae.TemperatureDamping = next()
	cfg.Algae.SpontaneousChance = next()

	cfg.Climate.HumidityDecay = next()

	cfg.Behavior.EatSpeed = next()
	cfg.Behavior.FoodFactor = next()
	cfg.Species[0].Metabolism = next()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Algae.SurviveMin,
		cfg.Algae.SurviveMax,
		cfg.Algae.BirthMin,
		cfg.Algae.GrowthDelta,
		cfg.Algae.TemperatureDamping,
		cfg.Algae.SpontaneousChance,
		cfg.Climate.HumidityDecay,
		cfg.Behavior.EatSpeed,
		cfg.Behavior.FoodFactor,
		cfg.Species[0].Metabolism,
	}
}
