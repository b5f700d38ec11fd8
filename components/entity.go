// Package components defines plain data for cells and ECS entity components.
package components

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Gender of an entity. Informational only.
type Gender uint8

const (
	Female Gender = iota
	Male
)

func (g Gender) String() string {
	if g == Male {
		return "male"
	}
	return "female"
}

// Position is an entity's continuous world position. Cell (x, y) spans
// [x, x+1) on both axes.
type Position struct {
	Vec r2.Vec `inspect:"label,fmt:%.2f"`
}

// CellX returns the grid column containing the position.
func (p Position) CellX() int { return floorInt(p.Vec.X) }

// CellY returns the grid row containing the position.
func (p Position) CellY() int { return floorInt(p.Vec.Y) }

func floorInt(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}

// Motion holds the entity's heading. The heading is a unit vector, or zero
// while the entity stands still to drink or eat.
type Motion struct {
	Heading r2.Vec `inspect:"label,fmt:%.2f"`
}

// Vitals holds needs and life state.
type Vitals struct {
	Age    time.Duration `inspect:"label"`
	Hunger float64       `inspect:"bar"`
	Thirst float64       `inspect:"bar"`
	Dead   bool          `inspect:"bool"`
}

// Traits holds per-entity constants copied from the species config.
type Traits struct {
	Species          string        `inspect:"label"`
	Glyph            byte          `inspect:"skip"` // adult
	BabyGlyph        byte          `inspect:"skip"`
	Gender           Gender        `inspect:"label"`
	Metabolism       float64       `inspect:"label,fmt:%.5f"`
	HungerMultiplier float64       `inspect:"skip"`
	ThirstMultiplier float64       `inspect:"skip"`
	Perception       float64       `inspect:"label"`
	SightMultiplier  float64       `inspect:"skip"`
	SmellMultiplier  float64       `inspect:"skip"`
	MaturityAge      time.Duration `inspect:"label"`
}

// RangeOfSight is the radius in cells for water search and flocking.
func (t *Traits) RangeOfSight() float64 { return t.Perception * t.SightMultiplier }

// RangeOfSmell is the radius in cells for food search.
func (t *Traits) RangeOfSmell() float64 { return t.Perception * t.SmellMultiplier }

// IsAdult reports whether age has reached maturity.
func (t *Traits) IsAdult(age time.Duration) bool { return age >= t.MaturityAge }

// GlyphAt returns the map symbol for an entity of the given age.
func (t *Traits) GlyphAt(age time.Duration) byte {
	if t.IsAdult(age) {
		return t.Glyph
	}
	return t.BabyGlyph
}

// Mind holds the ordered behavior stack and the last behavior that acted.
type Mind struct {
	Behaviors []Behavior   `inspect:"skip"`
	Active    BehaviorKind `inspect:"label"`
}
