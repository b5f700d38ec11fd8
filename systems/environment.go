package systems

import (
	"math"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
)

// EnvironmentRule is the per-tick cellular automaton over cell climate and
// algae. It reads the grid's front buffer and writes one cell of the back
// buffer, so rows can be updated by independent workers.
type EnvironmentRule struct {
	climate  config.ClimateConfig
	algae    config.AlgaeConfig
	tempSpan float64
}

// NewEnvironmentRule builds a rule from the climate and algae sections.
func NewEnvironmentRule(cfg *config.Config) *EnvironmentRule {
	return &EnvironmentRule{
		climate:  cfg.Climate,
		algae:    cfg.Algae,
		tempSpan: cfg.Derived.TemperatureRange,
	}
}

// UpdateRows advances rows [y0, y1) into the back buffer.
// hourOfDay is the fractional simulated hour in [0, 24).
func (r *EnvironmentRule) UpdateRows(g *Grid, y0, y1 int, hourOfDay float64, rng Rand) {
	for y := y0; y < y1; y++ {
		src := g.Row(y)
		dst := g.BackRow(y)
		for x := range src {
			r.Update(g, &src[x], &dst[x], hourOfDay, rng)
		}
	}
}

// Update computes the next state of src into dst. src must be a front
// buffer cell of g.
func (r *EnvironmentRule) Update(g *Grid, src, dst *components.Cell, hourOfDay float64, rng Rand) {
	*dst = *src

	// Common to all kinds: humidity diffuses and slowly decays.
	dst.Humidity = clamp01(g.AverageOver(src.X, src.Y, r.climate.HumidityRadius, Humidity) * r.climate.HumidityDecay)

	switch src.Kind {
	case components.KindFloor:
		r.updateFloor(g, src, dst, rng)
	case components.KindWater:
		r.updateWater(g, src, dst)
	case components.KindWall:
		r.updateWall(g, src, dst)
	case components.KindBorder:
		r.updateBorder(dst, hourOfDay)
	}

	dst.Temperature = clamp(dst.Temperature, r.climate.MinTemperature, r.climate.MaxTemperature)
	dst.Humidity = clamp01(dst.Humidity)
	dst.Algae = clamp01(dst.Algae)
}

func (r *EnvironmentRule) updateFloor(g *Grid, src, dst *components.Cell, rng Rand) {
	a := &r.algae
	regionAlgae := g.SumOver(src.X, src.Y, a.SearchRadius, Algae)
	dst.Algae = r.nextAlgae(src.Algae, regionAlgae, src.Temperature, dst.Humidity)

	if rng.Float64() < a.SpontaneousChance*dst.Humidity {
		dst.Algae = UniformRange(rng, a.SpontaneousMin, 1)
	}

	// Humidity slows the spread of heat.
	avgTemp := g.AverageOver(src.X, src.Y, r.climate.TemperatureRadius, Temperature)
	dst.Temperature = src.Temperature + (1-dst.Humidity)*(avgTemp-src.Temperature)
	dst.Temperature = r.sinkTowardIdeal(dst.Temperature)
}

// nextAlgae applies the life rule to one floor cell.
func (r *EnvironmentRule) nextAlgae(level, regionAlgae, temperature, humidity float64) float64 {
	a := &r.algae
	ideal := r.climate.IdealTemperature

	var delta float64
	if level > 0 {
		if regionAlgae >= a.SurviveMin && regionAlgae <= a.SurviveMax {
			delta = a.GrowthDelta
		} else {
			delta = -a.GrowthDelta
		}
	} else if regionAlgae >= a.BirthMin && regionAlgae <= a.BirthMax {
		delta = a.BirthDelta
	}

	delta *= 1 - a.TemperatureDamping*math.Abs(math.Sin(temperatureFactor(temperature, ideal)))

	switch {
	case humidity < a.DryHumidity:
		delta = 0
	case humidity < 0.5:
		delta *= 1 - humidity
	default:
		delta *= 1 + (humidity - 0.5)
	}

	level += delta
	if level > 0 {
		if temperature-ideal > a.AgeEpsilon {
			level -= a.AgeRate
		} else {
			level -= a.AgeRate * humidity
		}
	}
	if level < a.SnapThreshold {
		return 0
	}
	return clamp01(level)
}

// temperatureFactor grows as temperature moves away from ideal.
func temperatureFactor(temperature, ideal float64) float64 {
	td := 2 * (temperature - ideal)
	if td != 0 {
		td = 1 / td
	} else {
		td = 1
	}
	return 2 - td
}

func (r *EnvironmentRule) updateWater(g *Grid, src, dst *components.Cell) {
	c := &r.climate
	td := src.Temperature - c.IdealTemperature
	if td > 0 && dst.Humidity < 1 {
		dst.Humidity += c.HumidityDelta * td
	} else if td < 0 && dst.Humidity > 0 {
		dst.Humidity -= c.HumidityDelta
	}

	avgTemp := g.AverageOver(src.X, src.Y, c.TemperatureRadius, Temperature)
	dst.Temperature = (c.WaterBlend*src.Temperature + avgTemp) / (c.WaterBlend + 1)
	dst.Temperature = r.sinkTowardIdeal(dst.Temperature)
}

func (r *EnvironmentRule) updateWall(g *Grid, src, dst *components.Cell) {
	c := &r.climate
	avgTemp := g.AverageOver(src.X, src.Y, c.TemperatureRadius, Temperature)
	dst.Temperature = (c.WallBlend*src.Temperature + avgTemp) / (c.WallBlend + 1)
	dst.Temperature = r.sinkTowardIdeal(dst.Temperature)
	dst.Humidity = 0
}

// updateBorder drives the diurnal cycle: min temperature at hour zero,
// peaking once per period.
func (r *EnvironmentRule) updateBorder(dst *components.Cell, hourOfDay float64) {
	h := hourOfDay + dst.Phase
	dst.Temperature = r.tempSpan/2*(1-math.Cos(h/r.climate.BorderPeriod)) + r.climate.MinTemperature
}

func (r *EnvironmentRule) sinkTowardIdeal(t float64) float64 {
	ideal := r.climate.IdealTemperature
	switch {
	case t < ideal:
		t += r.climate.HeatSink
	case t > ideal:
		t -= r.climate.HeatSink
	}
	return t
}
