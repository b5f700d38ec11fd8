package systems

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
)

// BoundsError reports an access outside the grid.
type BoundsError struct {
	Op            string // "get" or "set"
	X, Y          int
	Width, Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("grid %s (%d,%d): outside %dx%d", e.Op, e.X, e.Y, e.Width, e.Height)
}

// CellProperty extracts a scalar from a cell for neighborhood folds.
type CellProperty func(c *components.Cell) float64

// Temperature, Humidity and Algae are the foldable cell properties.
func Temperature(c *components.Cell) float64 { return c.Temperature }
func Humidity(c *components.Cell) float64    { return c.Humidity }
func Algae(c *components.Cell) float64       { return c.Algae }

// algaeStripes is the number of locks guarding algae writes during the
// entity pass. Must be a power of two.
const algaeStripes = 64

// Grid is a bounded, row-major, double-buffered cell store.
// Reads and neighborhood folds use the front buffer. The environment pass
// writes the back buffer and Swap publishes it.
type Grid struct {
	width, height int
	front         []components.Cell
	back          []components.Cell

	algaeLocks [algaeStripes]sync.Mutex
}

// NewGrid allocates a grid of floor cells at the given temperature.
func NewGrid(width, height int, temperature float64) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{
		width:  width,
		height: height,
		front:  make([]components.Cell, width*height),
		back:   make([]components.Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.front[g.index(x, y)] = components.NewCell(x, y, components.KindFloor, temperature, 0)
		}
	}
	copy(g.back, g.front)
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.front) }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// IsEdge reports whether (x, y) lies on the outer ring.
func (g *Grid) IsEdge(x, y int) bool {
	return x == 0 || y == 0 || x == g.width-1 || y == g.height-1
}

func (g *Grid) index(x, y int) int { return y*g.width + x }

// Get returns the front-buffer cell, or false outside the grid. Neighborhood
// probes use this and treat a miss as "no cell".
func (g *Grid) Get(x, y int) (*components.Cell, bool) {
	if !g.InBounds(x, y) {
		return nil, false
	}
	return &g.front[g.index(x, y)], true
}

// At returns a copy of the cell, failing outside the grid.
func (g *Grid) At(x, y int) (components.Cell, error) {
	if !g.InBounds(x, y) {
		return components.Cell{}, &BoundsError{Op: "get", X: x, Y: y, Width: g.width, Height: g.height}
	}
	return g.front[g.index(x, y)], nil
}

// Set replaces the cell at (x, y). The stored cell keeps the grid coordinates.
func (g *Grid) Set(x, y int, c components.Cell) error {
	if !g.InBounds(x, y) {
		return &BoundsError{Op: "set", X: x, Y: y, Width: g.width, Height: g.height}
	}
	c.X, c.Y = x, y
	g.front[g.index(x, y)] = c
	return nil
}

// Cells exposes the front buffer in row-major order. Callers must not
// retain it across a Swap.
func (g *Grid) Cells() []components.Cell { return g.front }

// Snapshot copies the front buffer.
func (g *Grid) Snapshot() []components.Cell {
	out := make([]components.Cell, len(g.front))
	copy(out, g.front)
	return out
}

// Row returns the front-buffer cells of row y.
func (g *Grid) Row(y int) []components.Cell {
	return g.front[y*g.width : (y+1)*g.width]
}

// BackRow returns the back-buffer cells of row y for the environment pass.
func (g *Grid) BackRow(y int) []components.Cell {
	return g.back[y*g.width : (y+1)*g.width]
}

// Swap publishes the back buffer.
func (g *Grid) Swap() {
	g.front, g.back = g.back, g.front
}

// IterateRegion visits every in-bounds cell of the square [cx-r, cx+r] x
// [cy-r, cy+r]. The square stands in for a circle of radius r.
func (g *Grid) IterateRegion(cx, cy, r int, fn func(c *components.Cell)) {
	x0, x1 := max(cx-r, 0), min(cx+r, g.width-1)
	y0, y1 := max(cy-r, 0), min(cy+r, g.height-1)
	for y := y0; y <= y1; y++ {
		row := g.front[y*g.width : (y+1)*g.width]
		for x := x0; x <= x1; x++ {
			fn(&row[x])
		}
	}
}

// SumOver folds prop over the radius-r square around (cx, cy).
func (g *Grid) SumOver(cx, cy, r int, prop CellProperty) float64 {
	var sum float64
	g.IterateRegion(cx, cy, r, func(c *components.Cell) {
		sum += prop(c)
	})
	return sum
}

// AverageOver divides SumOver by the full square area (2r+1)^2, so squares
// clipped by the grid edge average in zeros for the missing cells.
func (g *Grid) AverageOver(cx, cy, r int, prop CellProperty) float64 {
	side := float64(2*r + 1)
	return g.SumOver(cx, cy, r, prop) / (side * side)
}

// MovementAt returns the movement multiplier of the cell containing pos,
// zero outside the grid.
func (g *Grid) MovementAt(pos r2.Vec) float64 {
	c, ok := g.Get(cellCoord(pos.X), cellCoord(pos.Y))
	if !ok {
		return 0
	}
	return c.Movement
}

// MovementBlockedAt reports whether pos is outside the grid or in an
// impassable cell.
func (g *Grid) MovementBlockedAt(pos r2.Vec) bool {
	return g.MovementAt(pos) == 0
}

// CellAt returns the cell containing pos.
func (g *Grid) CellAt(pos r2.Vec) (*components.Cell, bool) {
	return g.Get(cellCoord(pos.X), cellCoord(pos.Y))
}

func (g *Grid) algaeLock(x, y int) *sync.Mutex {
	return &g.algaeLocks[g.index(x, y)&(algaeStripes-1)]
}

// AlgaeAt reads a floor cell's algae under its stripe lock. Non-floor and
// out-of-bounds cells report zero.
func (g *Grid) AlgaeAt(x, y int) float64 {
	c, ok := g.Get(x, y)
	if !ok || c.Kind != components.KindFloor {
		return 0
	}
	mu := g.algaeLock(x, y)
	mu.Lock()
	v := c.Algae
	mu.Unlock()
	return v
}

// ModifyAlgae atomically replaces a floor cell's algae with fn(current),
// clamped to [0,1]. It returns the level before the update, and false for
// cells without algae.
func (g *Grid) ModifyAlgae(x, y int, fn func(level float64) float64) (float64, bool) {
	c, ok := g.Get(x, y)
	if !ok || c.Kind != components.KindFloor {
		return 0, false
	}
	mu := g.algaeLock(x, y)
	mu.Lock()
	prev := c.Algae
	c.Algae = clamp01(fn(prev))
	mu.Unlock()
	return prev, true
}

// SetAlgae sets a floor cell's algae level, clamped to [0,1]. Non-floor
// cells are left untouched.
func (g *Grid) SetAlgae(x, y int, level float64) error {
	if !g.InBounds(x, y) {
		return &BoundsError{Op: "set", X: x, Y: y, Width: g.width, Height: g.height}
	}
	g.ModifyAlgae(x, y, func(float64) float64 { return level })
	return nil
}

// CountKind returns the number of front-buffer cells of kind k.
func (g *Grid) CountKind(k components.CellKind) int {
	n := 0
	for i := range g.front {
		if g.front[i].Kind == k {
			n++
		}
	}
	return n
}

// String renders the grid as one glyph per cell, for debugging.
func (g *Grid) String() string {
	buf := make([]byte, 0, (g.width+1)*g.height)
	for y := 0; y < g.height; y++ {
		for _, c := range g.Row(y) {
			buf = append(buf, c.Kind.Glyph())
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

func cellCoord(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
