package systems

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
	"github.com/pthm-cable/cavernlife/config"
)

// newTestAgent builds an agent at the center of cell (x, y) without an ECS
// world behind it.
func newTestAgent(x, y int, behaviors ...components.Behavior) Agent {
	return Agent{
		Position: &components.Position{Vec: cellCenter(x, y)},
		Motion:   &components.Motion{Heading: r2.Vec{X: 1}},
		Vitals:   &components.Vitals{},
		Traits: &components.Traits{
			Species:          "oink",
			Metabolism:       0.0001,
			HungerMultiplier: 5,
			ThirstMultiplier: 1,
			Perception:       20,
			SightMultiplier:  0.3,
			SmellMultiplier:  0.5,
		},
		Mind: &components.Mind{Behaviors: behaviors},
	}
}

func newTestContext(g *Grid, rng Rand) *BehaviorContext {
	return &BehaviorContext{Grid: g, Rand: rng, Step: time.Minute, Events: &TickEvents{}}
}

func TestThirstDrinksOnWater(t *testing.T) {
	g := NewGrid(5, 5, 21)
	setKind(t, g, 2, 2, components.KindWater)
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(2, 2, components.Behavior{Kind: components.BehaviorThirst, Rate: 0.1})
	a.Vitals.Thirst = 1
	ctx := newTestContext(g, fixedRand{f: 0.5})

	if got := p.Evaluate(a, ctx); got != components.BehaviorThirst {
		t.Fatalf("Evaluate = %v, want drinking", got)
	}
	if math.Abs(a.Vitals.Thirst-0.9) > 1e-12 {
		t.Errorf("thirst = %v, want 0.9", a.Vitals.Thirst)
	}
	if a.Motion.Heading != (r2.Vec{}) {
		t.Errorf("heading = %v, want zero while drinking", a.Motion.Heading)
	}
	if ctx.Events.Drinks != 1 {
		t.Errorf("drinks = %d, want 1", ctx.Events.Drinks)
	}
}

func TestThirstHeadsForWater(t *testing.T) {
	g := NewGrid(9, 3, 21)
	setKind(t, g, 7, 1, components.KindWater)
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(1, 1, components.Behavior{Kind: components.BehaviorThirst, Rate: 0.1})
	a.Vitals.Thirst = 0.8
	a.Motion.Heading = r2.Vec{X: 0, Y: 1}
	ctx := newTestContext(g, fixedRand{f: 0.1})

	if got := p.Evaluate(a, ctx); got != components.BehaviorThirst {
		t.Fatalf("Evaluate = %v, want drinking", got)
	}
	if a.Motion.Heading != (r2.Vec{X: 1}) {
		t.Errorf("heading = %v, want (1,0) toward the water", a.Motion.Heading)
	}
	if a.Vitals.Thirst != 0.8 {
		t.Errorf("thirst changed to %v before reaching water", a.Vitals.Thirst)
	}
}

func TestThirstSkippedByChance(t *testing.T) {
	g := NewGrid(3, 3, 21)
	setKind(t, g, 1, 1, components.KindWater)
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(1, 1, components.Behavior{Kind: components.BehaviorThirst, Rate: 0.1})
	a.Vitals.Thirst = 0.3
	ctx := newTestContext(g, fixedRand{f: 0.5})

	if got := p.Evaluate(a, ctx); got != components.BehaviorNone {
		t.Errorf("Evaluate = %v, want idle when the draw exceeds thirst", got)
	}
}

func TestHungerEatsAdjacentAlgae(t *testing.T) {
	g := NewGrid(3, 3, 21)
	if err := g.SetAlgae(2, 1, 0.05); err != nil {
		t.Fatal(err)
	}
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(1, 1, components.Behavior{Kind: components.BehaviorHunger, Rate: 0.1})
	a.Vitals.Hunger = 0.3
	ctx := newTestContext(g, fixedRand{f: 0.1})

	if got := p.Evaluate(a, ctx); got != components.BehaviorHunger {
		t.Fatalf("Evaluate = %v, want eating", got)
	}
	if got := g.AlgaeAt(2, 1); got != 0 {
		t.Errorf("algae = %v, want 0", got)
	}
	if math.Abs(a.Vitals.Hunger-0.29) > 1e-12 {
		t.Errorf("hunger = %v, want 0.29", a.Vitals.Hunger)
	}
	if ctx.Events.Meals != 1 || math.Abs(ctx.Events.AlgaeEaten-0.05) > 1e-12 {
		t.Errorf("events = %+v, want one meal of 0.05", *ctx.Events)
	}
}

func TestHungerEatsOwnCellFirst(t *testing.T) {
	g := NewGrid(3, 3, 21)
	g.SetAlgae(1, 1, 0.8)
	g.SetAlgae(2, 1, 0.9)
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(1, 1, components.Behavior{Kind: components.BehaviorHunger, Rate: 0.1})
	a.Vitals.Hunger = 0.5
	ctx := newTestContext(g, fixedRand{f: 0.1})

	p.Evaluate(a, ctx)
	// 0.1 eaten at food factor 0.2 removes 0.5 algae and restores 0.02 hunger
	if got := g.AlgaeAt(1, 1); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("own cell algae = %v, want 0.3", got)
	}
	if got := g.AlgaeAt(2, 1); got != 0.9 {
		t.Errorf("neighbor algae = %v, want untouched 0.9", got)
	}
	if math.Abs(a.Vitals.Hunger-0.48) > 1e-12 {
		t.Errorf("hunger = %v, want 0.48", a.Vitals.Hunger)
	}
}

func TestThirstShortCircuitsStack(t *testing.T) {
	cfg := config.Cfg()
	g := NewGrid(3, 3, 21)
	setKind(t, g, 1, 1, components.KindWater)
	g.SetAlgae(0, 1, 1)
	p := NewBehaviorPipeline(cfg)

	a := newTestAgent(1, 1, DefaultBehaviors(cfg, cfg.Species[0], fixedRand{f: 0.5})...)
	a.Vitals.Thirst = 1
	a.Vitals.Hunger = 1
	ctx := newTestContext(g, fixedRand{f: 0.5})

	p.Update(a, ctx)
	if a.Mind.Active != components.BehaviorThirst {
		t.Errorf("active = %v, want drinking", a.Mind.Active)
	}
	if got := g.AlgaeAt(0, 1); got != 1 {
		t.Errorf("algae = %v, hunger ran after thirst acted", got)
	}
	if ctx.Events.Meals != 0 {
		t.Errorf("meals = %d, want 0", ctx.Events.Meals)
	}
}

func TestDeathCheck(t *testing.T) {
	g := NewGrid(3, 3, 21)
	p := NewBehaviorPipeline(config.Cfg())
	lifespan := 10 * 24 * time.Hour

	tests := []struct {
		name      string
		age       time.Duration
		lastCheck time.Duration
		draw      float64
		dies      bool
	}{
		{"young", 5 * 24 * time.Hour, 0, 0, false},
		{"checked recently", 25 * 24 * time.Hour, 25*24*time.Hour - time.Hour, 0, false},
		{"old and unlucky", 15 * 24 * time.Hour, 0, 0.4, true},
		{"old and lucky", 15 * 24 * time.Hour, 0, 0.6, false},
		{"twice the lifespan", 20 * 24 * time.Hour, 0, 0.99, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(1, 1, components.Behavior{
				Kind:      components.BehaviorDeath,
				Lifespan:  lifespan,
				Interval:  24 * time.Hour,
				LastCheck: tt.lastCheck,
			})
			a.Vitals.Age = tt.age
			ctx := newTestContext(g, fixedRand{f: tt.draw})

			p.Update(a, ctx)
			if a.Vitals.Dead != tt.dies {
				t.Errorf("dead = %v, want %v", a.Vitals.Dead, tt.dies)
			}
			if tt.dies {
				if a.Mind.Active != components.BehaviorDeath || ctx.Events.Deaths != 1 {
					t.Errorf("active = %v deaths = %d", a.Mind.Active, ctx.Events.Deaths)
				}
				if a.Vitals.Age != tt.age {
					t.Errorf("dead entity aged to %v", a.Vitals.Age)
				}
			}
		})
	}
}

func TestDeadEntityIsFrozen(t *testing.T) {
	g := NewGrid(3, 3, 21)
	p := NewBehaviorPipeline(config.Cfg())
	a := newTestAgent(1, 1, components.Behavior{Kind: components.BehaviorWander})
	a.Vitals.Dead = true
	before := *a.Position

	p.Update(a, newTestContext(g, fixedRand{f: 0.5}))
	if *a.Position != before || a.Vitals.Age != 0 {
		t.Errorf("dead entity moved or aged: %v age %v", a.Position.Vec, a.Vitals.Age)
	}
}

func TestBlockedMoveReversesHeading(t *testing.T) {
	g := NewGrid(3, 3, 21)
	setKind(t, g, 2, 1, components.KindWall)
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(1, 1)
	ctx := newTestContext(g, fixedRand{f: 0.5})
	p.age(a, ctx)

	if a.Position.Vec != cellCenter(1, 1) {
		t.Errorf("position = %v, want unchanged", a.Position.Vec)
	}
	if a.Motion.Heading != (r2.Vec{X: -1}) {
		t.Errorf("heading = %v, want reversed", a.Motion.Heading)
	}
	if ctx.Events.Blocked != 1 {
		t.Errorf("blocked = %d, want 1", ctx.Events.Blocked)
	}

	// The reversed heading leads onto open floor
	p.age(a, ctx)
	if a.Position.Vec != cellCenter(0, 1) {
		t.Errorf("position = %v, want %v", a.Position.Vec, cellCenter(0, 1))
	}
}

func TestAgingAdvancesNeeds(t *testing.T) {
	g := NewGrid(5, 3, 21)
	setKind(t, g, 1, 1, components.KindWater)
	p := NewBehaviorPipeline(config.Cfg())

	a := newTestAgent(1, 1)
	ctx := newTestContext(g, fixedRand{f: 0.5})
	p.age(a, ctx)

	if a.Vitals.Age != time.Minute {
		t.Errorf("age = %v, want 1m", a.Vitals.Age)
	}
	if math.Abs(a.Vitals.Hunger-0.0005) > 1e-12 || math.Abs(a.Vitals.Thirst-0.0001) > 1e-12 {
		t.Errorf("needs = %v/%v, want 0.0005/0.0001", a.Vitals.Hunger, a.Vitals.Thirst)
	}
	// Water slows movement to a quarter cell per step
	want := r2.Add(cellCenter(1, 1), r2.Vec{X: components.WaterMovement})
	if a.Position.Vec != want {
		t.Errorf("position = %v, want %v", a.Position.Vec, want)
	}
}

func TestWanderLeavesUnitHeading(t *testing.T) {
	g := NewGrid(3, 3, 21)
	p := NewBehaviorPipeline(config.Cfg())

	tests := []struct {
		name        string
		heading     r2.Vec
		persistence float64
		draw        float64
	}{
		{"standing still", r2.Vec{}, 0.5, 0.3},
		{"keeps heading", r2.Vec{X: 3, Y: 4}, 0.9, 0.5},
		{"turns", r2.Vec{X: 0, Y: 1}, 0.1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(1, 1, components.Behavior{Kind: components.BehaviorWander, Persistence: tt.persistence})
			a.Motion.Heading = tt.heading
			if got := p.Evaluate(a, newTestContext(g, fixedRand{f: tt.draw})); got != components.BehaviorWander {
				t.Fatalf("Evaluate = %v, want wandering", got)
			}
			if n := r2.Norm(a.Motion.Heading); math.Abs(n-1) > 1e-9 {
				t.Errorf("|heading| = %v, want 1", n)
			}
		})
	}
}

func TestFlockingKeepsUnitHeadings(t *testing.T) {
	cfg := config.Cfg()
	g := NewGrid(30, 30, 21)
	ix := NewEntityIndex(30, 30, cfg.Behavior.PickRadiusSq)
	rng := NewRand(5)
	sp := cfg.Species[0]
	for i := 0; i < 12; i++ {
		pos := r2.Vec{X: 10 + float64(i%4), Y: 10 + float64(i/4)}
		ix.Spawn(pos, NewTraits(sp, rng), DefaultBehaviors(cfg, sp, rng), rng)
	}
	ix.Reindex()

	p := NewBehaviorPipeline(cfg)
	ctx := newTestContext(g, rng)
	ctx.Spatial = ix.Spatial()
	for step := 0; step < 20; step++ {
		for i, a := range ix.Agents() {
			ctx.Reset(i)
			p.Update(a, ctx)
			if a.Vitals.Dead {
				continue
			}
			n := r2.Norm(a.Motion.Heading)
			if n != 0 && math.Abs(n-1) > 1e-9 {
				t.Fatalf("step %d agent %d |heading| = %v", step, i, n)
			}
			if g.MovementBlockedAt(a.Position.Vec) {
				t.Fatalf("step %d agent %d left the grid at %v", step, i, a.Position.Vec)
			}
		}
		ix.Reindex()
	}
}

func TestSeparationSteersAway(t *testing.T) {
	cfg := config.Cfg()
	g := NewGrid(20, 20, 21)
	ix := NewEntityIndex(20, 20, cfg.Behavior.PickRadiusSq)
	rng := NewRand(1)
	sp := cfg.Species[0]
	sep := []components.Behavior{{Kind: components.BehaviorSeparation, Radius: 2}}
	ix.Spawn(r2.Vec{X: 10, Y: 10}, NewTraits(sp, rng), sep, rng)
	ix.Spawn(r2.Vec{X: 11, Y: 10}, NewTraits(sp, rng), append([]components.Behavior(nil), sep...), rng)
	ix.Reindex()

	p := NewBehaviorPipeline(cfg)
	ctx := newTestContext(g, rng)
	ctx.Spatial = ix.Spatial()

	a := ix.Agents()[0]
	a.Motion.Heading = r2.Vec{X: 0, Y: 1}
	ctx.Reset(0)
	if got := p.Evaluate(a, ctx); got != components.BehaviorSeparation {
		t.Fatalf("Evaluate = %v, want separating", got)
	}
	if a.Motion.Heading.X >= 0 {
		t.Errorf("heading = %v, want a component away from the mate at +x", a.Motion.Heading)
	}
}
