package systems

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
)

func init() {
	config.MustInit("")
}

// fixedRand returns the same draws every call.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return r.n % n }

func TestGridBounds(t *testing.T) {
	g := NewGrid(4, 3, 21)

	tests := []struct {
		name string
		x, y int
		ok   bool
	}{
		{"origin", 0, 0, true},
		{"far corner", 3, 2, true},
		{"past width", 4, 0, false},
		{"past height", 0, 3, false},
		{"negative", -1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.At(tt.x, tt.y)
			if tt.ok && err != nil {
				t.Errorf("At(%d,%d) = %v, want nil", tt.x, tt.y, err)
			}
			if !tt.ok {
				var be *BoundsError
				if !errors.As(err, &be) {
					t.Fatalf("At(%d,%d) err = %v, want BoundsError", tt.x, tt.y, err)
				}
				if be.Op != "get" || be.X != tt.x || be.Y != tt.y {
					t.Errorf("BoundsError = %+v", be)
				}
			}
			if _, ok := g.Get(tt.x, tt.y); ok != tt.ok {
				t.Errorf("Get(%d,%d) ok = %v, want %v", tt.x, tt.y, ok, tt.ok)
			}
		})
	}

	var be *BoundsError
	if err := g.Set(9, 9, components.Cell{}); !errors.As(err, &be) || be.Op != "set" {
		t.Errorf("Set out of bounds err = %v", err)
	}
}

func TestGridSetKeepsCoordinates(t *testing.T) {
	g := NewGrid(3, 3, 21)
	if err := g.Set(2, 1, components.NewCell(0, 0, components.KindWater, 21, 0.5)); err != nil {
		t.Fatal(err)
	}
	c, _ := g.At(2, 1)
	if c.X != 2 || c.Y != 1 || c.Kind != components.KindWater {
		t.Errorf("cell = %+v, want water at (2,1)", c)
	}
}

func TestAverageOverDividesByFullSquare(t *testing.T) {
	g := NewGrid(3, 3, 21)
	for i := range g.Cells() {
		g.Cells()[i].Humidity = 1
	}

	tests := []struct {
		name string
		x, y int
		r    int
		want float64
	}{
		{"center", 1, 1, 1, 1},
		{"corner", 0, 0, 1, 4.0 / 9},
		{"edge", 1, 0, 1, 6.0 / 9},
		{"radius zero", 0, 0, 0, 1},
		{"radius two", 1, 1, 2, 9.0 / 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.AverageOver(tt.x, tt.y, tt.r, Humidity)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AverageOver = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlgaeAccess(t *testing.T) {
	g := NewGrid(3, 3, 21)
	setKind(t, g, 2, 2, components.KindWall)

	if err := g.SetAlgae(0, 0, 1.5); err != nil {
		t.Fatal(err)
	}
	if got := g.AlgaeAt(0, 0); got != 1 {
		t.Errorf("algae after SetAlgae(1.5) = %v, want 1", got)
	}
	if err := g.SetAlgae(1, 1, -0.2); err != nil {
		t.Fatal(err)
	}
	if got := g.AlgaeAt(1, 1); got != 0 {
		t.Errorf("algae after SetAlgae(-0.2) = %v, want 0", got)
	}

	// Walls ignore algae writes
	if err := g.SetAlgae(2, 2, 0.7); err != nil {
		t.Fatal(err)
	}
	if got := g.AlgaeAt(2, 2); got != 0 {
		t.Errorf("wall algae = %v, want 0", got)
	}
	if _, ok := g.ModifyAlgae(2, 2, func(float64) float64 { return 1 }); ok {
		t.Error("ModifyAlgae on a wall reported success")
	}
	if err := g.SetAlgae(5, 5, 0.5); err == nil {
		t.Error("SetAlgae out of bounds returned nil")
	}

	prev, ok := g.ModifyAlgae(0, 0, func(l float64) float64 { return l - 0.25 })
	if !ok || prev != 1 {
		t.Errorf("ModifyAlgae = (%v, %v), want (1, true)", prev, ok)
	}
	if got := g.AlgaeAt(0, 0); got != 0.75 {
		t.Errorf("algae = %v, want 0.75", got)
	}
}

func TestMovementBlockedAt(t *testing.T) {
	g := NewGrid(4, 4, 21)
	setKind(t, g, 1, 1, components.KindWall)
	setKind(t, g, 2, 2, components.KindWater)
	setKind(t, g, 3, 3, components.KindBorder)

	tests := []struct {
		name    string
		pos     r2.Vec
		blocked bool
	}{
		{"floor", r2.Vec{X: 0.5, Y: 0.5}, false},
		{"water", r2.Vec{X: 2.9, Y: 2.1}, false},
		{"wall", r2.Vec{X: 1.5, Y: 1.5}, true},
		{"border", r2.Vec{X: 3.5, Y: 3.5}, true},
		{"left of grid", r2.Vec{X: -0.1, Y: 0.5}, true},
		{"below grid", r2.Vec{X: 0.5, Y: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.MovementBlockedAt(tt.pos); got != tt.blocked {
				t.Errorf("MovementBlockedAt(%v) = %v, want %v", tt.pos, got, tt.blocked)
			}
		})
	}
	if got := g.MovementAt(r2.Vec{X: 2.5, Y: 2.5}); got != components.WaterMovement {
		t.Errorf("water movement = %v, want %v", got, components.WaterMovement)
	}
}

func TestSwapPublishesBackBuffer(t *testing.T) {
	g := NewGrid(2, 2, 21)
	g.BackRow(1)[0].Humidity = 0.5
	if c, _ := g.At(0, 1); c.Humidity != 0 {
		t.Fatalf("front buffer changed before Swap: %v", c.Humidity)
	}
	g.Swap()
	if c, _ := g.At(0, 1); c.Humidity != 0.5 {
		t.Errorf("humidity after Swap = %v, want 0.5", c.Humidity)
	}
}

func TestGridString(t *testing.T) {
	g := NewGrid(3, 2, 21)
	setKind(t, g, 0, 0, components.KindWall)
	setKind(t, g, 2, 1, components.KindWater)
	if got, want := g.String(), "#..\n..~\n"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}
