package systems

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/cavernlife/config"
)

// NoiseField samples fractal simplex noise over grid coordinates.
type NoiseField struct {
	noise      opensimplex.Noise
	scale      float64
	octaves    int
	lacunarity float64
	gain       float64
}

// NewNoiseField creates a noise field from the cavern settings.
func NewNoiseField(seed int64, cfg config.CavernConfig) *NoiseField {
	octaves := cfg.NoiseOctaves
	if octaves < 1 {
		octaves = 1
	}
	return &NoiseField{
		noise:      opensimplex.NewNormalized(seed),
		scale:      cfg.NoiseScale,
		octaves:    octaves,
		lacunarity: cfg.NoiseLacunarity,
		gain:       cfg.NoiseGain,
	}
}

// Sample returns FBM noise in [0, 1) at cell (x, y).
func (n *NoiseField) Sample(x, y int) float64 {
	var sum, norm float64
	amp := 1.0
	freq := n.scale
	for o := 0; o < n.octaves; o++ {
		sum += amp * n.noise.Eval2(float64(x)*freq, float64(y)*freq)
		norm += amp
		freq *= n.lacunarity
		amp *= n.gain
	}
	if norm == 0 {
		return 0
	}
	return clamp(sum/norm, 0, 0.999999)
}
