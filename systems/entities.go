package systems

import (
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
)

// Agent bundles live component pointers for one entity. Pointers stay
// valid until the next structural change to the world.
type Agent struct {
	Entity   ecs.Entity
	Position *components.Position
	Motion   *components.Motion
	Vitals   *components.Vitals
	Traits   *components.Traits
	Mind     *components.Mind
}

// EntitySnapshot is a read-only copy of an entity's state.
type EntitySnapshot struct {
	Entity   ecs.Entity
	Species  string
	Glyph    byte // baby or adult symbol for the current age
	Adult    bool
	Gender   components.Gender
	Position r2.Vec
	Heading  r2.Vec
	Age      time.Duration
	Hunger   float64
	Thirst   float64
	Dead     bool
	Active   components.BehaviorKind
}

// spatialCellSize is the bucket size of the neighbor grid, in cells.
const spatialCellSize = 8

// EntityIndex owns all entities in an ark world and a per-tick spatial
// snapshot for neighbor queries.
type EntityIndex struct {
	world *ecs.World

	mapper *ecs.Map5[
		components.Position,
		components.Motion,
		components.Vitals,
		components.Traits,
		components.Mind,
	]
	filter *ecs.Filter5[
		components.Position,
		components.Motion,
		components.Vitals,
		components.Traits,
		components.Mind,
	]
	posMap *ecs.Map1[components.Position]

	agents       []Agent
	dirty        bool
	spatial      *SpatialGrid
	pickRadiusSq float64
}

// NewEntityIndex creates an empty index for a width x height world.
func NewEntityIndex(width, height int, pickRadiusSq float64) *EntityIndex {
	world := ecs.NewWorld()
	return &EntityIndex{
		world: world,
		mapper: ecs.NewMap5[
			components.Position,
			components.Motion,
			components.Vitals,
			components.Traits,
			components.Mind,
		](world),
		filter: ecs.NewFilter5[
			components.Position,
			components.Motion,
			components.Vitals,
			components.Traits,
			components.Mind,
		](world),
		posMap:       ecs.NewMap1[components.Position](world),
		spatial:      NewSpatialGrid(width, height, spatialCellSize),
		pickRadiusSq: pickRadiusSq,
	}
}

// NewTraits instantiates per-entity traits from a species.
func NewTraits(sp config.SpeciesConfig, rng Rand) components.Traits {
	var glyph byte = '?'
	if sp.Glyph != "" {
		glyph = sp.Glyph[0]
	}
	baby := glyph
	if sp.BabyGlyph != "" {
		baby = sp.BabyGlyph[0]
	}
	return components.Traits{
		Species:          sp.Name,
		Glyph:            glyph,
		BabyGlyph:        baby,
		Gender:           components.Gender(rng.IntN(2)),
		Metabolism:       sp.Metabolism,
		HungerMultiplier: sp.HungerMultiplier,
		ThirstMultiplier: sp.ThirstMultiplier,
		Perception:       sp.Perception,
		SightMultiplier:  sp.SightMultiplier,
		SmellMultiplier:  sp.SmellMultiplier,
		MaturityAge:      days(sp.MaturityDays),
	}
}

func days(d float64) time.Duration {
	return time.Duration(d * float64(24*time.Hour))
}

// Spawn creates an entity at pos with a random initial heading.
func (ix *EntityIndex) Spawn(pos r2.Vec, traits components.Traits, behaviors []components.Behavior, rng Rand) ecs.Entity {
	p := components.Position{Vec: pos}
	m := components.Motion{Heading: RandomHeading(rng)}
	v := components.Vitals{}
	mind := components.Mind{Behaviors: behaviors}
	e := ix.mapper.NewEntity(&p, &m, &v, &traits, &mind)
	ix.dirty = true
	return e
}

// Len returns the number of entities, dead ones included.
func (ix *EntityIndex) Len() int {
	ix.refresh()
	return len(ix.agents)
}

// Agents returns live component views in a stable order.
func (ix *EntityIndex) Agents() []Agent {
	ix.refresh()
	return ix.agents
}

func (ix *EntityIndex) refresh() {
	if !ix.dirty {
		return
	}
	ix.agents = ix.agents[:0]
	query := ix.filter.Query()
	for query.Next() {
		pos, mot, vit, tr, mind := query.Get()
		ix.agents = append(ix.agents, Agent{
			Entity:   query.Entity(),
			Position: pos,
			Motion:   mot,
			Vitals:   vit,
			Traits:   tr,
			Mind:     mind,
		})
	}
	ix.dirty = false
}

// Reindex rebuilds the spatial snapshot from current component state.
// Call between passes, never while workers run.
func (ix *EntityIndex) Reindex() {
	ix.spatial.Clear()
	for i, a := range ix.Agents() {
		ix.spatial.Insert(Neighbor{
			E:       a.Entity,
			Index:   i,
			Species: a.Traits.Species,
			Pos:     a.Position.Vec,
			Heading: a.Motion.Heading,
			Dead:    a.Vitals.Dead,
		})
	}
}

// Spatial returns the snapshot grid built by the last Reindex.
func (ix *EntityIndex) Spatial() *SpatialGrid { return ix.spatial }

// Alive reports whether e is a live handle in the world.
func (ix *EntityIndex) Alive(e ecs.Entity) bool { return ix.world.Alive(e) }

// PositionOf returns the current position of e.
func (ix *EntityIndex) PositionOf(e ecs.Entity) (r2.Vec, bool) {
	if !ix.world.Alive(e) {
		return r2.Vec{}, false
	}
	p := ix.posMap.Get(e)
	if p == nil {
		return r2.Vec{}, false
	}
	return p.Vec, true
}

// Agent returns the live component pointers of e.
func (ix *EntityIndex) Agent(e ecs.Entity) (Agent, bool) {
	if !ix.world.Alive(e) {
		return Agent{}, false
	}
	for _, a := range ix.Agents() {
		if a.Entity == e {
			return a, true
		}
	}
	return Agent{}, false
}

func snapshotOf(a Agent) EntitySnapshot {
	return EntitySnapshot{
		Entity:   a.Entity,
		Species:  a.Traits.Species,
		Glyph:    a.Traits.GlyphAt(a.Vitals.Age),
		Adult:    a.Traits.IsAdult(a.Vitals.Age),
		Gender:   a.Traits.Gender,
		Position: a.Position.Vec,
		Heading:  a.Motion.Heading,
		Age:      a.Vitals.Age,
		Hunger:   a.Vitals.Hunger,
		Thirst:   a.Vitals.Thirst,
		Dead:     a.Vitals.Dead,
		Active:   a.Mind.Active,
	}
}

// Snapshot copies the state of every entity.
func (ix *EntityIndex) Snapshot() []EntitySnapshot {
	agents := ix.Agents()
	out := make([]EntitySnapshot, len(agents))
	for i, a := range agents {
		out[i] = snapshotOf(a)
	}
	return out
}

// EntityAt returns the first entity within the pick radius of pos.
func (ix *EntityIndex) EntityAt(pos r2.Vec) (EntitySnapshot, bool) {
	for _, a := range ix.Agents() {
		if r2.Norm2(r2.Sub(a.Position.Vec, pos)) <= ix.pickRadiusSq {
			return snapshotOf(a), true
		}
	}
	return EntitySnapshot{}, false
}

// EntitiesInArea returns every entity, dead ones included, within radius
// of pos. An empty species matches all.
func (ix *EntityIndex) EntitiesInArea(pos r2.Vec, radius float64, species string) []EntitySnapshot {
	agents := ix.Agents()
	var out []EntitySnapshot
	for _, a := range agents {
		if species != "" && a.Traits.Species != species {
			continue
		}
		if r2.Norm2(r2.Sub(a.Position.Vec, pos)) <= radius*radius {
			out = append(out, snapshotOf(a))
		}
	}
	return out
}
