package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/components"
)

// blend mixes the current heading with a unit steering direction using the
// maintenance bias, and normalizes. If the two cancel out the steering
// direction wins.
func blend(heading, dir r2.Vec, bias float64) r2.Vec {
	mixed := r2.Scale(1/(bias+1), r2.Add(r2.Scale(bias, heading), dir))
	if r2.Norm2(mixed) == 0 {
		return dir
	}
	return r2.Unit(mixed)
}

// separation steers away from the first flockmate closer than the
// separation radius.
func (p *BehaviorPipeline) separation(b *components.Behavior, a Agent, ctx *BehaviorContext) Outcome {
	mates := ctx.Flockmates(a)
	if len(mates) <= 1 {
		return NoOp
	}

	pos := a.Position.Vec
	radiusSq := b.Radius * b.Radius
	for _, n := range mates {
		if n.Index == ctx.self {
			continue
		}
		away := r2.Sub(pos, n.Pos)
		if r2.Norm2(away) > radiusSq {
			continue
		}
		if r2.Norm2(away) == 0 {
			return NoOp
		}
		a.Motion.Heading = blend(a.Motion.Heading, r2.Unit(away), p.cfg.MaintenanceBias)
		return Acted
	}
	return NoOp
}

// alignment steers toward the average heading of flockmates.
func (p *BehaviorPipeline) alignment(a Agent, ctx *BehaviorContext) Outcome {
	mates := ctx.Flockmates(a)
	if len(mates) <= 1 {
		return NoOp
	}

	var sum r2.Vec
	for _, n := range mates {
		sum = r2.Add(sum, n.Heading)
	}
	avg := r2.Scale(1/float64(len(mates)), sum)
	if r2.Norm2(avg) == 0 {
		return NoOp
	}
	a.Motion.Heading = blend(a.Motion.Heading, r2.Unit(avg), p.cfg.MaintenanceBias)
	return Acted
}

// cohesion steers toward the centroid of flockmates.
func (p *BehaviorPipeline) cohesion(a Agent, ctx *BehaviorContext) Outcome {
	mates := ctx.Flockmates(a)
	if len(mates) <= 1 {
		return NoOp
	}

	var sum r2.Vec
	for _, n := range mates {
		sum = r2.Add(sum, n.Pos)
	}
	center := r2.Scale(1/float64(len(mates)), sum)
	delta := r2.Sub(center, a.Position.Vec)
	if r2.Norm2(delta) == 0 {
		return NoOp
	}
	a.Motion.Heading = blend(a.Motion.Heading, r2.Unit(delta), p.cfg.MaintenanceBias)
	return Acted
}

// wander keeps the heading with probability Persistence and otherwise
// blends in a random direction. It always acts and always leaves a unit
// heading.
func (p *BehaviorPipeline) wander(b *components.Behavior, a Agent, ctx *BehaviorContext) Outcome {
	h := a.Motion.Heading
	switch {
	case r2.Norm2(h) == 0:
		h = RandomHeading(ctx.Rand)
	case ctx.Rand.Float64() > b.Persistence:
		h = blend(h, RandomHeading(ctx.Rand), p.cfg.MaintenanceBias)
	default:
		h = r2.Unit(h)
	}
	a.Motion.Heading = h
	return Acted
}
