package systems

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
)

// GenerationError reports a cavern that cannot be made fully connected.
type GenerationError struct {
	Stage  string
	Region int // -1 when not tied to a region
	Reason string
}

func (e *GenerationError) Error() string {
	if e.Region < 0 {
		return fmt.Sprintf("cavern generation (%s): %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("cavern generation (%s): region %d: %s", e.Stage, e.Region, e.Reason)
}

// GenerationReport summarizes one generation pass.
type GenerationReport struct {
	Seed          int64
	Width, Height int
	FillMode      string

	WallRegions  int // after culling
	FloorRegions int // after culling
	CulledWalls  int // wall regions converted to floor
	CulledFloors int // floor regions converted to wall
	Passages     int

	FloorCells       int
	WallCells        int
	WaterCells       int
	UnreachableFloor int

	Placed int
}

// LogValue implements slog.LogValuer for structured logging.
func (r GenerationReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("seed", r.Seed),
		slog.Int("width", r.Width),
		slog.Int("height", r.Height),
		slog.String("fill_mode", r.FillMode),
		slog.Int("wall_regions", r.WallRegions),
		slog.Int("floor_regions", r.FloorRegions),
		slog.Int("culled_walls", r.CulledWalls),
		slog.Int("culled_floors", r.CulledFloors),
		slog.Int("passages", r.Passages),
		slog.Int("floor_cells", r.FloorCells),
		slog.Int("wall_cells", r.WallCells),
		slog.Int("water_cells", r.WaterCells),
		slog.Int("unreachable_floor", r.UnreachableFloor),
		slog.Int("placed", r.Placed),
	)
}

// CavernGenerator builds a connected cavern. It runs single-threaded, once,
// before the first tick.
type CavernGenerator struct {
	cfg   *config.Config
	seed  int64
	rng   Rand
	noise *NoiseField
}

// NewCavernGenerator creates a generator with its own random stream.
func NewCavernGenerator(cfg *config.Config, seed int64) *CavernGenerator {
	cg := &CavernGenerator{
		cfg:  cfg,
		seed: seed,
		rng:  NewRand(seed),
	}
	if cfg.Cavern.FillMode == "simplex" {
		cg.noise = NewNoiseField(seed, cfg.Cavern)
	}
	return cg
}

// Generate fills, smooths, culls and connects a new grid.
func (cg *CavernGenerator) Generate() (*Grid, GenerationReport, error) {
	cfg := cg.cfg
	rep := GenerationReport{
		Seed:     cg.seed,
		Width:    cfg.World.Width,
		Height:   cfg.World.Height,
		FillMode: cfg.Cavern.FillMode,
	}

	g := NewGrid(cfg.World.Width, cfg.World.Height, cfg.Climate.IdealTemperature)
	cg.randomFill(g)
	for i := 0; i < cfg.Cavern.SmoothIterations; i++ {
		cg.smooth(g)
	}

	walls := FindRegions(g, IsSolidCell)
	walls, rep.CulledWalls = cg.cull(g, walls, components.KindFloor)
	rep.WallRegions = len(walls)

	floors := FindRegions(g, IsFloorCell)
	floors, rep.CulledFloors = cg.cull(g, floors, components.KindWall)
	rep.FloorRegions = len(floors)

	passages, err := cg.connect(g, floors)
	rep.Passages = passages
	if err != nil {
		return nil, rep, err
	}

	rep.FloorCells = g.CountKind(components.KindFloor)
	rep.WallCells = g.CountKind(components.KindWall)
	rep.WaterCells = g.CountKind(components.KindWater)
	rep.UnreachableFloor = UnreachableFloor(g)

	return g, rep, nil
}

// freshCell creates a newly generated cell of kind k.
func (cg *CavernGenerator) freshCell(x, y int, k components.CellKind) components.Cell {
	c := components.NewCell(x, y, k, cg.cfg.Climate.IdealTemperature, cg.rng.Float64()*cg.cfg.Cavern.InitialHumidity)
	switch k {
	case components.KindFloor:
		c.Algae = cg.rng.Float64()
	case components.KindBorder:
		c.Phase = cg.rng.Float64() * cg.cfg.Cavern.BorderPhaseJitter
	}
	return c
}

func (cg *CavernGenerator) randomFill(g *Grid) {
	cav := &cg.cfg.Cavern
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.IsEdge(x, y) {
				g.Set(x, y, cg.freshCell(x, y, components.KindBorder))
				continue
			}

			pct := cg.rng.Float64() * 100
			if cg.noise != nil {
				pct = (1-cav.NoiseWeight)*pct + cav.NoiseWeight*cg.noise.Sample(x, y)*100
			}

			kind := components.KindFloor
			switch {
			case pct < cav.WallFillPct:
				kind = components.KindWall
			case pct < cav.WallFillPct+cav.WaterFillPct:
				kind = components.KindWater
			}
			g.Set(x, y, cg.freshCell(x, y, kind))
		}
	}
}

// smooth applies one majority-rule pass over interior cells. Decisions are
// made against the pre-pass grid. With SmoothHoldTies a cell with exactly
// four wall (or, failing that, four water) neighbors keeps its kind.
func (cg *CavernGenerator) smooth(g *Grid) {
	w, h := g.Width(), g.Height()
	hold := cg.cfg.Cavern.SmoothHoldTies
	next := make([]components.CellKind, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := g.index(x, y)
			walls, water := countNeighborKinds(g, x, y)
			switch {
			case walls >= 5:
				next[i] = components.KindWall
			case hold && (walls == 4 || water == 4):
				next[i] = g.front[i].Kind
			case water >= 5:
				next[i] = components.KindWater
			default:
				next[i] = components.KindFloor
			}
		}
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			k := next[g.index(x, y)]
			if c, _ := g.Get(x, y); c.Kind != k {
				g.Set(x, y, cg.freshCell(x, y, k))
			}
		}
	}
}

// countNeighborKinds counts solid and water cells in the 8-neighborhood.
// Missing cells and the border ring count as solid.
func countNeighborKinds(g *Grid, x, y int) (walls, water int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c, ok := g.Get(x+dx, y+dy)
			switch {
			case !ok || IsSolidCell(c):
				walls++
			case c.Kind == components.KindWater:
				water++
			}
		}
	}
	return walls, water
}

// cull converts regions smaller than the threshold to kind `to` and
// returns the survivors. Border cells never convert.
func (cg *CavernGenerator) cull(g *Grid, regions []*Region, to components.CellKind) ([]*Region, int) {
	threshold := cg.cfg.Cavern.CullThreshold
	kept := regions[:0]
	culled := 0
	for _, r := range regions {
		if r.Size() >= threshold {
			kept = append(kept, r)
			continue
		}
		culled++
		for _, p := range r.Tiles {
			if c, _ := g.Get(p.X, p.Y); c.Kind != components.KindBorder {
				g.Set(p.X, p.Y, cg.freshCell(p.X, p.Y, to))
			}
		}
	}
	for i, r := range kept {
		r.ID = i
	}
	return kept, culled
}

// connect carves passages until every floor region is reachable from the
// largest. First each isolated region links to its nearest neighbor, then
// the closest unreachable/reachable pair is joined until none remain.
func (cg *CavernGenerator) connect(g *Grid, regions []*Region) (int, error) {
	if len(regions) == 0 {
		return 0, nil
	}

	for _, r := range regions {
		r.computeEdges()
	}
	sortRegionsBySize(regions)
	main := regions[0]
	main.Main = true
	main.Accessible = true
	if len(regions) == 1 {
		return 0, nil
	}

	for _, r := range regions {
		if len(r.Edges) == 0 {
			return 0, &GenerationError{Stage: "connect", Region: r.ID, Reason: "region has no edge tiles"}
		}
	}

	rg := newRegionGraph(regions)
	passages := 0

	for _, a := range regions {
		if rg.degree(a) > 0 {
			continue
		}
		var best *Region
		var bestA, bestB Point
		bestDist := -1
		for _, b := range regions {
			if a == b || rg.connected(a, b) {
				continue
			}
			pa, pb, d, ok := closestEdgePair(a, b)
			if ok && (bestDist < 0 || d < bestDist) {
				best, bestA, bestB, bestDist = b, pa, pb, d
			}
		}
		if best != nil {
			cg.carvePassage(g, bestA, bestB)
			rg.connect(a, best)
			passages++
		}
	}

	for rg.markAccessible(main) > 0 {
		var bestFrom, bestTo *Region
		var bestA, bestB Point
		bestDist := -1
		for _, a := range regions {
			if a.Accessible {
				continue
			}
			for _, b := range regions {
				if !b.Accessible {
					continue
				}
				pa, pb, d, ok := closestEdgePair(a, b)
				if ok && (bestDist < 0 || d < bestDist) {
					bestFrom, bestTo, bestA, bestB, bestDist = a, b, pa, pb, d
				}
			}
		}
		if bestFrom == nil {
			for _, r := range regions {
				if !r.Accessible {
					return passages, &GenerationError{Stage: "connect", Region: r.ID, Reason: "no passage to the main region"}
				}
			}
			break
		}
		cg.carvePassage(g, bestA, bestB)
		rg.connect(bestFrom, bestTo)
		passages++
	}

	return passages, nil
}

// carvePassage stamps a floor brush along the line from a to b.
func (cg *CavernGenerator) carvePassage(g *Grid, a, b Point) {
	radius := cg.cfg.Cavern.PassageRadius
	for _, p := range Line(a, b) {
		Disc(p, radius, func(q Point) {
			c, ok := g.Get(q.X, q.Y)
			if !ok || g.IsEdge(q.X, q.Y) || c.Kind == components.KindFloor {
				return
			}
			g.Set(q.X, q.Y, cg.freshCell(q.X, q.Y, components.KindFloor))
		})
	}
}

// Populate places a random number of entities on floor cells. Each entity
// samples up to PlacementAttempts random cells and is skipped if none are
// floor. It returns the number placed.
func (cg *CavernGenerator) Populate(g *Grid, idx *EntityIndex, species config.SpeciesConfig) int {
	pop := &cg.cfg.Population
	count := pop.Min
	if pop.Max > pop.Min {
		count = cg.rng.IntN(pop.Max-pop.Min) + pop.Min
	}

	placed := 0
	for i := 0; i < count; i++ {
		for attempt := 0; attempt < pop.PlacementAttempts; attempt++ {
			x, y := cg.rng.IntN(g.Width()), cg.rng.IntN(g.Height())
			c, _ := g.Get(x, y)
			if c.Kind != components.KindFloor {
				continue
			}
			pos := r2.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			idx.Spawn(pos, NewTraits(species, cg.rng), DefaultBehaviors(cg.cfg, species, cg.rng), cg.rng)
			placed++
			break
		}
	}
	return placed
}
