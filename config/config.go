// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Clock      ClockConfig      `yaml:"clock"`
	Climate    ClimateConfig    `yaml:"climate"`
	Algae      AlgaeConfig      `yaml:"algae"`
	Cavern     CavernConfig     `yaml:"cavern"`
	Population PopulationConfig `yaml:"population"`
	Species    []SpeciesConfig  `yaml:"species"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions in cells, border ring included.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ClockConfig holds the real-time to simulated-time mapping.
type ClockConfig struct {
	RealStepMS     int     `yaml:"real_step_ms"`     // Real milliseconds accumulated per simulated step
	SimStepMinutes float64 `yaml:"sim_step_minutes"` // Simulated minutes advanced per step
}

// ClimateConfig holds temperature and humidity rule parameters.
type ClimateConfig struct {
	IdealTemperature  float64 `yaml:"ideal_temperature"`
	MinTemperature    float64 `yaml:"min_temperature"`
	MaxTemperature    float64 `yaml:"max_temperature"`
	TemperatureRadius int     `yaml:"temperature_radius"` // Neighborhood radius for temperature averaging
	HumidityRadius    int     `yaml:"humidity_radius"`    // Neighborhood radius for humidity diffusion
	HumidityDecay     float64 `yaml:"humidity_decay"`     // Multiplier applied to averaged humidity
	HumidityDelta     float64 `yaml:"humidity_delta"`     // Water evaporation/condensation step
	HeatSink          float64 `yaml:"heat_sink"`          // Per-tick nudge toward ideal temperature
	BorderPeriod      float64 `yaml:"border_period"`      // Divisor on hour-of-day for the diurnal cosine
	WaterBlend        float64 `yaml:"water_blend"`        // Weight of own temperature vs regional average
	WallBlend         float64 `yaml:"wall_blend"`
}

// AlgaeConfig holds floor algae life-rule parameters.
type AlgaeConfig struct {
	SearchRadius       int     `yaml:"search_radius"`
	SurviveMin         float64 `yaml:"survive_min"` // Alive cell grows when regional sum in [min, max]
	SurviveMax         float64 `yaml:"survive_max"`
	BirthMin           float64 `yaml:"birth_min"` // Dead cell is reborn when regional sum in [min, max]
	BirthMax           float64 `yaml:"birth_max"`
	GrowthDelta        float64 `yaml:"growth_delta"`
	BirthDelta         float64 `yaml:"birth_delta"`
	TemperatureDamping float64 `yaml:"temperature_damping"` // delta *= 1 - damping*|sin(tempFactor)|
	DryHumidity        float64 `yaml:"dry_humidity"`        // Below this nothing grows
	AgeRate            float64 `yaml:"age_rate"`
	AgeEpsilon         float64 `yaml:"age_epsilon"`
	SnapThreshold      float64 `yaml:"snap_threshold"`     // Smaller levels snap to zero
	SpontaneousChance  float64 `yaml:"spontaneous_chance"` // Scaled by humidity
	SpontaneousMin     float64 `yaml:"spontaneous_min"`
}

// CavernConfig holds procedural generation parameters.
type CavernConfig struct {
	FillMode          string  `yaml:"fill_mode"` // "random" or "simplex"
	WallFillPct       float64 `yaml:"wall_fill_pct"`
	WaterFillPct      float64 `yaml:"water_fill_pct"`
	SmoothIterations  int     `yaml:"smooth_iterations"`
	SmoothHoldTies    bool    `yaml:"smooth_hold_ties"` // Exactly 4 like neighbors leaves a cell unchanged
	CullThreshold     int     `yaml:"cull_threshold"`
	PassageRadius     int     `yaml:"passage_radius"`
	NoiseScale        float64 `yaml:"noise_scale"`         // Simplex base frequency per cell
	NoiseOctaves      int     `yaml:"noise_octaves"`       // FBM octaves
	NoiseLacunarity   float64 `yaml:"noise_lacunarity"`    // Frequency multiplier per octave
	NoiseGain         float64 `yaml:"noise_gain"`          // Amplitude multiplier per octave
	NoiseWeight       float64 `yaml:"noise_weight"`        // Blend of noise vs uniform draw in [0,1]
	InitialHumidity   float64 `yaml:"initial_humidity"`    // Fresh cells draw humidity in [0, this)
	BorderPhaseJitter float64 `yaml:"border_phase_jitter"` // Hours of random phase per border cell
}

// PopulationConfig holds entity placement parameters.
type PopulationConfig struct {
	Min               int    `yaml:"min"`
	Max               int    `yaml:"max"`
	PlacementAttempts int    `yaml:"placement_attempts"`
	Species           string `yaml:"species"` // Species placed at generation
}

// SpeciesConfig defines the needs and senses of one entity species.
type SpeciesConfig struct {
	Name             string  `yaml:"name"`
	Glyph            string  `yaml:"glyph"`
	BabyGlyph        string  `yaml:"baby_glyph"` // Before maturity; empty uses glyph
	Metabolism       float64 `yaml:"metabolism"`
	HungerMultiplier float64 `yaml:"hunger_multiplier"`
	ThirstMultiplier float64 `yaml:"thirst_multiplier"`
	Perception       float64 `yaml:"perception"`
	SightMultiplier  float64 `yaml:"sight_multiplier"`
	SmellMultiplier  float64 `yaml:"smell_multiplier"`
	MaturityDays     float64 `yaml:"maturity_days"`
	LifespanDays     float64 `yaml:"lifespan_days"`
}

// BehaviorConfig holds behavior pipeline tunables.
type BehaviorConfig struct {
	DrinkSpeed       float64 `yaml:"drink_speed"`
	EatSpeed         float64 `yaml:"eat_speed"`
	FoodFactor       float64 `yaml:"food_factor"`
	ReachSq          float64 `yaml:"reach_sq"` // Squared distance at which a target can be consumed
	SeparationRadius float64 `yaml:"separation_radius"`
	MaintenanceBias  float64 `yaml:"maintenance_bias"`
	DeathCheckHours  float64 `yaml:"death_check_hours"`
	PickRadiusSq     float64 `yaml:"pick_radius_sq"` // EntityAt match distance
}

// ParallelConfig holds worker pool settings.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Minimum items before fanning out
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Simulated steps per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TemperatureRange float64        // MaxTemperature - MinTemperature
	RealStep         time.Duration  // Clock.RealStepMS as a duration
	SimStep          time.Duration  // Clock.SimStepMinutes as a duration
	SpeciesIndex     map[string]int // name -> index into Species
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy, for callers that tweak parameters per run.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Species = append([]SpeciesConfig(nil), c.Species...)
	cp.computeDerived()
	return &cp
}

func (c *Config) validate() error {
	if c.World.Width < 3 || c.World.Height < 3 {
		return fmt.Errorf("world must be at least 3x3, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Climate.MaxTemperature <= c.Climate.MinTemperature {
		return fmt.Errorf("climate: max_temperature %.2f must exceed min_temperature %.2f",
			c.Climate.MaxTemperature, c.Climate.MinTemperature)
	}
	if c.Cavern.WallFillPct < 0 || c.Cavern.WaterFillPct < 0 || c.Cavern.WallFillPct+c.Cavern.WaterFillPct > 100 {
		return fmt.Errorf("cavern: fill percentages %.1f/%.1f out of range",
			c.Cavern.WallFillPct, c.Cavern.WaterFillPct)
	}
	switch c.Cavern.FillMode {
	case "", "random", "simplex":
	default:
		return fmt.Errorf("cavern: unknown fill_mode %q", c.Cavern.FillMode)
	}
	if c.Population.Max < c.Population.Min {
		return fmt.Errorf("population: max %d below min %d", c.Population.Max, c.Population.Min)
	}
	if len(c.Species) == 0 {
		return fmt.Errorf("at least one species must be configured")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TemperatureRange = c.Climate.MaxTemperature - c.Climate.MinTemperature
	c.Derived.RealStep = time.Duration(c.Clock.RealStepMS) * time.Millisecond
	c.Derived.SimStep = time.Duration(math.Round(c.Clock.SimStepMinutes * float64(time.Minute)))

	// Diagonal passage steps only stay 4-connected with a brush of radius 1 or more
	if c.Cavern.PassageRadius < 1 {
		c.Cavern.PassageRadius = 1
	}
	if c.Population.PlacementAttempts < 1 {
		c.Population.PlacementAttempts = 1
	}

	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i, sp := range c.Species {
		c.Derived.SpeciesIndex[sp.Name] = i
	}
	if c.Population.Species == "" {
		c.Population.Species = c.Species[0].Name
	}
}

// SpeciesByName returns the named species config.
func (c *Config) SpeciesByName(name string) (SpeciesConfig, bool) {
	i, ok := c.Derived.SpeciesIndex[name]
	if !ok {
		return SpeciesConfig{}, false
	}
	return c.Species[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
