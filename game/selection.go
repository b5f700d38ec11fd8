package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/inspector"
)

// Select picks the entity under pos and follows it across ticks. It
// reports whether an entity was found; a miss clears the selection.
func (s *Simulation) Select(pos r2.Vec) bool {
	snap, ok := s.index.EntityAt(pos)
	if !ok {
		s.Deselect()
		return false
	}
	s.selected = snap.Entity
	s.hasSelected = true
	return true
}

// Deselect clears the current selection.
func (s *Simulation) Deselect() {
	s.hasSelected = false
}

// Selected returns the selected entity, if it still exists.
func (s *Simulation) Selected() (ecs.Entity, bool) {
	if !s.hasSelected || !s.index.Alive(s.selected) {
		return ecs.Entity{}, false
	}
	return s.selected, true
}

// DescribeSelection renders the selected entity as a text panel.
func (s *Simulation) DescribeSelection() (string, bool) {
	e, ok := s.Selected()
	if !ok {
		return "", false
	}
	return s.DescribeEntity(e)
}

// DescribeEntity renders an entity's components and the cell it stands on.
func (s *Simulation) DescribeEntity(e ecs.Entity) (string, bool) {
	a, ok := s.index.Agent(e)
	if !ok {
		return "", false
	}

	title := fmt.Sprintf("%s %c (%s)", a.Traits.Species, a.Traits.GlyphAt(a.Vitals.Age), a.Mind.Active)
	sections := []inspector.Section{
		{Title: "state", Components: []interface{}{a.Position, a.Motion, a.Vitals}},
		{Title: "traits", Components: []interface{}{a.Traits}},
	}
	if c, ok := s.grid.CellAt(a.Position.Vec); ok {
		sections = append(sections, inspector.Section{Title: "cell", Components: []interface{}{*c}})
	}
	return inspector.Describe(title, sections...), true
}

// DescribeCell renders the cell at (x, y) as a text panel.
func (s *Simulation) DescribeCell(x, y int) (string, error) {
	c, err := s.grid.At(x, y)
	if err != nil {
		return "", err
	}
	title := fmt.Sprintf("%s cell (%d, %d)", c.Kind, x, y)
	return inspector.Describe(title, inspector.Section{Components: []interface{}{c}}), nil
}
