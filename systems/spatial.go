// Package systems implements the cavern world: grid, environment rule,
// generator, entity index and behavior pipeline.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbor is an entity as seen at the start of the current tick.
type Neighbor struct {
	E       ecs.Entity
	Index   int // position in EntityIndex.Agents
	Species string
	Pos     r2.Vec
	Heading r2.Vec
	Dead    bool
	DistSq  float64 // squared distance from the query origin
}

// SpatialGrid buckets a per-tick snapshot of entity state for radius
// queries. Workers only read it, so it is safe to share during a pass.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // record indices per bucket
	records  []Neighbor
}

// NewSpatialGrid creates a spatial grid covering a width x height world.
func NewSpatialGrid(width, height int, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 8
	}
	cols := int(float64(width)/cellSize) + 1
	rows := int(float64(height)/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all records from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.records = g.records[:0]
}

// Insert records an entity snapshot.
func (g *SpatialGrid) Insert(n Neighbor) {
	idx := g.cellIndex(n.Pos.X, n.Pos.Y)
	g.cells[idx] = append(g.cells[idx], len(g.records))
	g.records = append(g.records, n)
}

// Len returns the number of records.
func (g *SpatialGrid) Len() int { return len(g.records) }

// Record returns the snapshot for agent index i, in insertion order.
func (g *SpatialGrid) Record(i int) Neighbor { return g.records[i] }

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto appends every record within radius of pos whose species
// matches (empty matches all) to dst, up to MaxQueryResults. The querying
// entity itself is included when it lies in range. Reuse dst across calls
// to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, pos r2.Vec, radius float64, species string, includeDead bool) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol := int(pos.X / g.cellSize)
	centerRow := int(pos.Y / g.cellSize)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, ri := range g.cells[row*g.cols+col] {
				rec := g.records[ri]
				if species != "" && rec.Species != species {
					continue
				}
				if rec.Dead && !includeDead {
					continue
				}
				distSq := r2.Norm2(r2.Sub(rec.Pos, pos))
				if distSq <= radiusSq {
					rec.DistSq = distSq
					dst = append(dst, rec)
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat bucket index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
