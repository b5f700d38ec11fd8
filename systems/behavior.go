package systems

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
)

// Outcome is the result of evaluating one behavior.
type Outcome struct {
	Acted bool
}

var (
	// Acted stops evaluation and makes the behavior active.
	Acted = Outcome{Acted: true}
	// NoOp falls through to the next behavior.
	NoOp = Outcome{}
)

// TickEvents counts what a worker's entities did during one pass.
type TickEvents struct {
	Drinks     int
	Meals      int
	Deaths     int
	AlgaeEaten float64
	Blocked    int // moves reversed by an impassable destination
}

// Add accumulates o into e.
func (e *TickEvents) Add(o TickEvents) {
	e.Drinks += o.Drinks
	e.Meals += o.Meals
	e.Deaths += o.Deaths
	e.AlgaeEaten += o.AlgaeEaten
	e.Blocked += o.Blocked
}

// BehaviorContext carries the read-only world view and per-worker scratch
// for one entity update.
type BehaviorContext struct {
	Grid    *Grid
	Spatial *SpatialGrid
	Rand    Rand
	Step    time.Duration
	Events  *TickEvents

	self      int
	neighbors []Neighbor
	loaded    bool
}

// Reset prepares the context for the agent at index self.
func (ctx *BehaviorContext) Reset(self int) {
	ctx.self = self
	ctx.loaded = false
}

// Flockmates returns living same-species entities within range of sight,
// the agent itself included, as of the start of the tick.
func (ctx *BehaviorContext) Flockmates(a Agent) []Neighbor {
	if ctx.loaded {
		return ctx.neighbors
	}
	ctx.loaded = true
	if ctx.Spatial == nil {
		ctx.neighbors = ctx.neighbors[:0]
		return ctx.neighbors
	}
	origin := a.Position.Vec
	if ctx.self < ctx.Spatial.Len() {
		origin = ctx.Spatial.Record(ctx.self).Pos
	}
	ctx.neighbors = ctx.Spatial.QueryRadiusInto(ctx.neighbors[:0], origin, a.Traits.RangeOfSight(), a.Traits.Species, false)
	return ctx.neighbors
}

// BehaviorPipeline evaluates each entity's priority stack and applies
// aging, needs and movement.
type BehaviorPipeline struct {
	cfg config.BehaviorConfig
}

// NewBehaviorPipeline creates a pipeline from the behavior section.
func NewBehaviorPipeline(cfg *config.Config) *BehaviorPipeline {
	return &BehaviorPipeline{cfg: cfg.Behavior}
}

// DefaultBehaviors returns the standard priority stack for a species.
func DefaultBehaviors(cfg *config.Config, sp config.SpeciesConfig, rng Rand) []components.Behavior {
	b := &cfg.Behavior
	return []components.Behavior{
		{
			Kind:     components.BehaviorDeath,
			Lifespan: days(sp.LifespanDays),
			Interval: time.Duration(b.DeathCheckHours * float64(time.Hour)),
		},
		{Kind: components.BehaviorThirst, Rate: b.DrinkSpeed},
		{Kind: components.BehaviorHunger, Rate: b.EatSpeed},
		{Kind: components.BehaviorSeparation, Radius: b.SeparationRadius},
		{Kind: components.BehaviorAlignment},
		{Kind: components.BehaviorCohesion},
		{Kind: components.BehaviorWander, Persistence: rng.Float64()},
	}
}

// Update runs one tick for a. Dead entities are left untouched.
func (p *BehaviorPipeline) Update(a Agent, ctx *BehaviorContext) {
	if a.Vitals.Dead {
		return
	}
	a.Mind.Active = p.Evaluate(a, ctx)
	if a.Vitals.Dead {
		return
	}
	p.age(a, ctx)
}

// Evaluate runs the stack in order until a behavior acts and returns its
// kind, or BehaviorNone.
func (p *BehaviorPipeline) Evaluate(a Agent, ctx *BehaviorContext) components.BehaviorKind {
	for i := range a.Mind.Behaviors {
		b := &a.Mind.Behaviors[i]
		if p.Run(b, a, ctx).Acted {
			return b.Kind
		}
	}
	return components.BehaviorNone
}

// Run evaluates a single behavior.
func (p *BehaviorPipeline) Run(b *components.Behavior, a Agent, ctx *BehaviorContext) Outcome {
	switch b.Kind {
	case components.BehaviorDeath:
		return p.deathCheck(b, a, ctx)
	case components.BehaviorThirst:
		return p.thirst(b, a, ctx)
	case components.BehaviorHunger:
		return p.hunger(b, a, ctx)
	case components.BehaviorSeparation:
		return p.separation(b, a, ctx)
	case components.BehaviorAlignment:
		return p.alignment(a, ctx)
	case components.BehaviorCohesion:
		return p.cohesion(a, ctx)
	case components.BehaviorWander:
		return p.wander(b, a, ctx)
	}
	return NoOp
}

// deathCheck runs at most once per interval. Past the lifespan the chance
// of dying grows with how far past it the entity is.
func (p *BehaviorPipeline) deathCheck(b *components.Behavior, a Agent, ctx *BehaviorContext) Outcome {
	age := a.Vitals.Age
	if age-b.LastCheck < b.Interval {
		return NoOp
	}
	b.LastCheck = age
	if b.Lifespan <= 0 || age <= b.Lifespan {
		return NoOp
	}
	chance := float64(age)/float64(b.Lifespan) - 1
	if ctx.Rand.Float64() < chance {
		a.Vitals.Dead = true
		a.Motion.Heading = r2.Vec{}
		if ctx.Events != nil {
			ctx.Events.Deaths++
		}
		return Acted
	}
	return NoOp
}

// age advances age and needs, then moves along the heading scaled by the
// current cell's movement multiplier. A blocked destination reverses the
// heading instead.
func (p *BehaviorPipeline) age(a Agent, ctx *BehaviorContext) {
	v, t := a.Vitals, a.Traits
	v.Age += ctx.Step
	v.Hunger = clamp01(v.Hunger + t.Metabolism*t.HungerMultiplier)
	v.Thirst = clamp01(v.Thirst + t.Metabolism*t.ThirstMultiplier)

	pos := a.Position.Vec
	dest := r2.Add(pos, r2.Scale(ctx.Grid.MovementAt(pos), a.Motion.Heading))
	if ctx.Grid.MovementBlockedAt(dest) {
		a.Motion.Heading = r2.Scale(-1, a.Motion.Heading)
		if ctx.Events != nil {
			ctx.Events.Blocked++
		}
		return
	}
	a.Position.Vec = dest
}
