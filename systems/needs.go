package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
)

// cellCenter returns the world position of the center of cell (x, y).
func cellCenter(x, y int) r2.Vec {
	return r2.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

// target is a cell picked by a needs search.
type target struct {
	X, Y   int
	DistSq float64
	Found  bool
}

// thirst drinks when standing on or next to water, otherwise heads for the
// nearest visible water, or the most humid cell when none is visible.
// Acts with probability equal to the current thirst.
func (p *BehaviorPipeline) thirst(b *components.Behavior, a Agent, ctx *BehaviorContext) Outcome {
	v := a.Vitals
	if v.Thirst <= 0 || ctx.Rand.Float64() >= v.Thirst {
		return NoOp
	}

	pos := a.Position.Vec
	if c, ok := ctx.Grid.CellAt(pos); ok && c.Kind == components.KindWater {
		p.drink(b, a, ctx)
		return Acted
	}

	water, humid := findWater(ctx.Grid, pos, a.Traits.RangeOfSight())
	if water.Found {
		if water.DistSq < p.cfg.ReachSq {
			p.drink(b, a, ctx)
			return Acted
		}
		return steerTo(a, cellCenter(water.X, water.Y))
	}
	if humid.Found {
		return steerTo(a, cellCenter(humid.X, humid.Y))
	}
	return NoOp
}

func (p *BehaviorPipeline) drink(b *components.Behavior, a Agent, ctx *BehaviorContext) {
	a.Vitals.Thirst = math.Max(0, a.Vitals.Thirst-b.Rate)
	a.Motion.Heading = r2.Vec{}
	if ctx.Events != nil {
		ctx.Events.Drinks++
	}
}

// findWater scans the square of the given radius around pos for the closest
// water cell and the most humid passable cell, ties going to the closer.
func findWater(g *Grid, pos r2.Vec, radius float64) (water, humid target) {
	r := int(math.Ceil(radius))
	cx, cy := cellCoord(pos.X), cellCoord(pos.Y)
	bestHumidity := -1.0

	g.IterateRegion(cx, cy, r, func(c *components.Cell) {
		if c.Movement == 0 {
			return
		}
		d := r2.Norm2(r2.Sub(cellCenter(c.X, c.Y), pos))
		if c.Kind == components.KindWater {
			if !water.Found || d < water.DistSq {
				water = target{X: c.X, Y: c.Y, DistSq: d, Found: true}
			}
		}
		if c.Humidity > bestHumidity || (c.Humidity == bestHumidity && d < humid.DistSq) {
			bestHumidity = c.Humidity
			humid = target{X: c.X, Y: c.Y, DistSq: d, Found: true}
		}
	})
	return water, humid
}

// hunger eats algae from the current or an adjacent floor cell, otherwise
// heads for the closest algae within range of smell. Acts with probability
// equal to the current hunger.
func (p *BehaviorPipeline) hunger(b *components.Behavior, a Agent, ctx *BehaviorContext) Outcome {
	v := a.Vitals
	if v.Hunger <= 0 || ctx.Rand.Float64() >= v.Hunger {
		return NoOp
	}

	pos := a.Position.Vec
	cx, cy := cellCoord(pos.X), cellCoord(pos.Y)
	if ctx.Grid.AlgaeAt(cx, cy) > 0 {
		if p.eat(b, a, ctx, cx, cy) {
			return Acted
		}
	}

	food := findAlgae(ctx.Grid, pos, a.Traits.RangeOfSmell())
	if !food.Found {
		return NoOp
	}
	if food.DistSq < p.cfg.ReachSq {
		if p.eat(b, a, ctx, food.X, food.Y) {
			return Acted
		}
		return NoOp
	}
	return steerTo(a, cellCenter(food.X, food.Y))
}

// eat consumes algae from cell (x, y). Eating more than the cell holds
// takes what is left.
func (p *BehaviorPipeline) eat(b *components.Behavior, a Agent, ctx *BehaviorContext, x, y int) bool {
	rate, factor := b.Rate, p.cfg.FoodFactor
	prev, ok := ctx.Grid.ModifyAlgae(x, y, func(level float64) float64 {
		if level > rate {
			return level - rate/factor
		}
		return 0
	})
	if !ok || prev <= 0 {
		return false
	}

	var gained, eaten float64
	if prev > rate {
		gained = rate * factor
		eaten = math.Min(prev, rate/factor)
	} else {
		gained = prev * factor
		eaten = prev
	}
	a.Vitals.Hunger = clamp01(a.Vitals.Hunger - gained)
	a.Motion.Heading = r2.Vec{}
	if ctx.Events != nil {
		ctx.Events.Meals++
		ctx.Events.AlgaeEaten += eaten
	}
	return true
}

// findAlgae scans the square of the given radius around pos for the
// closest floor cell holding algae, ties going to more algae.
func findAlgae(g *Grid, pos r2.Vec, radius float64) target {
	r := int(math.Ceil(radius))
	cx, cy := cellCoord(pos.X), cellCoord(pos.Y)
	var best target
	bestLevel := 0.0

	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			level := g.AlgaeAt(x, y)
			if level <= 0 {
				continue
			}
			d := r2.Norm2(r2.Sub(cellCenter(x, y), pos))
			if !best.Found || d < best.DistSq || (d == best.DistSq && level > bestLevel) {
				best = target{X: x, Y: y, DistSq: d, Found: true}
				bestLevel = level
			}
		}
	}
	return best
}

// steerTo points the heading at dst.
func steerTo(a Agent, dst r2.Vec) Outcome {
	delta := r2.Sub(dst, a.Position.Vec)
	if r2.Norm2(delta) == 0 {
		return NoOp
	}
	a.Motion.Heading = r2.Unit(delta)
	return Acted
}
