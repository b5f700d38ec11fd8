package game

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/cavernlife/components"
)

// Overlay selects a per-cell quantity drawn over floor and water cells.
type Overlay uint8

const (
	OverlayNone Overlay = iota
	OverlayAlgae
	OverlayHumidity
	OverlayTemperature
)

var overlayNames = map[string]Overlay{
	"none":        OverlayNone,
	"algae":       OverlayAlgae,
	"humidity":    OverlayHumidity,
	"temperature": OverlayTemperature,
}

// ParseOverlay maps a flag value to an Overlay.
func ParseOverlay(name string) (Overlay, error) {
	o, ok := overlayNames[strings.ToLower(name)]
	if !ok {
		return OverlayNone, fmt.Errorf("unknown overlay %q", name)
	}
	return o, nil
}

// ramp maps [0,1] to increasing ink density.
const ramp = " .:-=+*%@"

// RenderOptions controls Render.
type RenderOptions struct {
	Overlay  Overlay
	Entities bool
}

// Render draws the grid as text, one character per cell. Entities are drawn
// with their species glyph for their age, dead ones as 'x'.
func (s *Simulation) Render(opts RenderOptions) string {
	w, h := s.grid.Width(), s.grid.Height()
	buf := make([]byte, 0, (w+1)*h)
	for y := 0; y < h; y++ {
		for _, c := range s.grid.Row(y) {
			buf = append(buf, s.cellGlyph(&c, opts.Overlay))
		}
		buf = append(buf, '\n')
	}

	if opts.Entities {
		for _, a := range s.index.Agents() {
			x, y := a.Position.CellX(), a.Position.CellY()
			if !s.grid.InBounds(x, y) {
				continue
			}
			g := a.Traits.GlyphAt(a.Vitals.Age)
			if a.Vitals.Dead {
				g = 'x'
			}
			buf[y*(w+1)+x] = g
		}
	}
	return string(buf)
}

func (s *Simulation) cellGlyph(c *components.Cell, overlay Overlay) byte {
	if overlay == OverlayNone || c.Kind == components.KindWall || c.Kind == components.KindBorder {
		return c.Kind.Glyph()
	}

	var v float64
	switch overlay {
	case OverlayAlgae:
		if c.Kind != components.KindFloor {
			return c.Kind.Glyph()
		}
		v = c.Algae
	case OverlayHumidity:
		v = c.Humidity
	case OverlayTemperature:
		v = (c.Temperature - s.cfg.Climate.MinTemperature) / s.cfg.Derived.TemperatureRange
	}
	if v <= 0 {
		return c.Kind.Glyph()
	}
	i := int(v*float64(len(ramp)-1) + 0.5)
	i = max(1, min(i, len(ramp)-1))
	return ramp[i]
}
