package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/cavernlife/config"
	"github.com/pthm-cable/cavernlife/telemetry"
)

func init() {
	config.MustInit("")
}

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestApplyToConfigMatchesExtract(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Cfg().Clone()

	want := pv.DefaultVector()
	pv.ApplyToConfig(cfg, want)
	got := pv.ExtractFromConfig(cfg)

	if len(got) != pv.Dim() {
		t.Fatalf("ExtractFromConfig returned %d values, want %d", len(got), pv.Dim())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
	if cfg.Algae.BirthMax < cfg.Algae.BirthMin {
		t.Errorf("birth_max %v below birth_min %v", cfg.Algae.BirthMax, cfg.Algae.BirthMin)
	}

	// The global config must not be touched through the clone
	if &config.Cfg().Species[0] == &cfg.Species[0] {
		t.Error("clone shares the species slice")
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = -1e9
	}
	for i, c := range pv.Clamp(v) {
		if c != pv.Specs[i].Min {
			t.Errorf("%s clamped to %v, want %v", pv.Specs[i].Name, c, pv.Specs[i].Min)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("quality of no windows = %v, want 0", q)
	}

	steady := make([]telemetry.WindowStats, 10)
	for i := range steady {
		steady[i] = telemetry.WindowStats{Alive: 60, AlgaeMean: 0.2, FloorCoverage: targetCoverage}
	}
	q := computeQuality(steady)
	if math.Abs(q-1) > 1e-9 {
		t.Errorf("steady healthy cavern quality = %v, want 1", q)
	}

	dead := make([]telemetry.WindowStats, 10)
	if q := computeQuality(dead); q != 0 {
		t.Errorf("empty cavern quality = %v, want 0", q)
	}

	if computeFitness(100, 1) >= computeFitness(100, 0) {
		t.Error("higher quality should lower fitness")
	}
}
