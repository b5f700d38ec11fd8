package systems

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cavernlife/config"
)

func newTestIndex(t *testing.T) *EntityIndex {
	t.Helper()
	cfg := config.Cfg().Clone()
	cfg.Species = append(cfg.Species, config.SpeciesConfig{Name: "gloop", Glyph: "g", Perception: 10, SightMultiplier: 1})
	ix := NewEntityIndex(20, 20, 2)
	rng := NewRand(3)

	oink, _ := cfg.SpeciesByName("oink")
	ix.Spawn(r2.Vec{X: 5.5, Y: 5.5}, NewTraits(oink, rng), nil, rng)
	ix.Spawn(r2.Vec{X: 6.5, Y: 5.5}, NewTraits(cfg.Species[len(cfg.Species)-1], rng), nil, rng)
	ix.Spawn(r2.Vec{X: 15.5, Y: 15.5}, NewTraits(oink, rng), nil, rng)
	ix.Reindex()
	return ix
}

func TestEntityAt(t *testing.T) {
	ix := newTestIndex(t)

	tests := []struct {
		name    string
		pos     r2.Vec
		found   bool
		species string
	}{
		{"on the first", r2.Vec{X: 5.0, Y: 5.5}, true, "oink"},
		{"on the second", r2.Vec{X: 7.2, Y: 5.5}, true, "gloop"},
		{"far corner", r2.Vec{X: 15, Y: 16}, true, "oink"},
		{"empty floor", r2.Vec{X: 10, Y: 10}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, ok := ix.EntityAt(tt.pos)
			if ok != tt.found {
				t.Fatalf("EntityAt(%v) found = %v, want %v", tt.pos, ok, tt.found)
			}
			if ok && snap.Species != tt.species {
				t.Errorf("species = %q, want %q", snap.Species, tt.species)
			}
		})
	}
}

func TestEntitiesInArea(t *testing.T) {
	ix := newTestIndex(t)

	tests := []struct {
		name    string
		pos     r2.Vec
		radius  float64
		species string
		want    int
	}{
		{"pair, any species", r2.Vec{X: 6, Y: 5.5}, 1, "", 2},
		{"pair, oink only", r2.Vec{X: 6, Y: 5.5}, 1, "oink", 1},
		{"whole world, oink", r2.Vec{X: 10, Y: 10}, 20, "oink", 2},
		{"unknown species", r2.Vec{X: 10, Y: 10}, 20, "snark", 0},
		{"nothing nearby", r2.Vec{X: 1, Y: 18}, 3, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.EntitiesInArea(tt.pos, tt.radius, tt.species); len(got) != tt.want {
				t.Errorf("EntitiesInArea = %d entities, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDeadEntitiesStayQueryable(t *testing.T) {
	ix := newTestIndex(t)
	first := ix.Agents()[0]
	first.Vitals.Dead = true
	ix.Reindex()

	if got := ix.EntitiesInArea(r2.Vec{X: 5.5, Y: 5.5}, 0.5, ""); len(got) != 1 || !got[0].Dead {
		t.Errorf("EntitiesInArea = %+v, want the dead entity", got)
	}
	// Flocking queries skip the dead
	n := ix.Spatial().QueryRadiusInto(nil, r2.Vec{X: 5.5, Y: 5.5}, 0.5, "", false)
	if len(n) != 0 {
		t.Errorf("spatial query returned %d dead neighbors", len(n))
	}
	n = ix.Spatial().QueryRadiusInto(nil, r2.Vec{X: 5.5, Y: 5.5}, 0.5, "", true)
	if len(n) != 1 {
		t.Errorf("spatial query with dead = %d, want 1", len(n))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ix := newTestIndex(t)
	snaps := ix.Snapshot()
	if len(snaps) != 3 || ix.Len() != 3 {
		t.Fatalf("snapshot has %d entities, index %d, want 3", len(snaps), ix.Len())
	}
	snaps[0].Hunger = 0.9
	if ix.Agents()[0].Vitals.Hunger != 0 {
		t.Error("editing a snapshot changed the entity")
	}

	e := snaps[1].Entity
	pos, ok := ix.PositionOf(e)
	if !ok || pos != (r2.Vec{X: 6.5, Y: 5.5}) {
		t.Errorf("PositionOf = %v, %v", pos, ok)
	}
	if a, ok := ix.Agent(e); !ok || a.Traits.Species != "gloop" {
		t.Errorf("Agent = %+v, %v", a, ok)
	}
}

func TestSnapshotMaturity(t *testing.T) {
	ix := newTestIndex(t)
	tests := []struct {
		name  string
		index int
		age   time.Duration
		glyph byte
		adult bool
	}{
		{"newborn oink", 0, 0, 'o', false},
		{"two day oink", 0, 48 * time.Hour, 'o', false},
		{"mature oink", 0, 72 * time.Hour, 'O', true},
		{"gloop without a baby glyph", 1, 0, 'g', true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix.Agents()[tt.index].Vitals.Age = tt.age
			snap := ix.Snapshot()[tt.index]
			if snap.Glyph != tt.glyph || snap.Adult != tt.adult {
				t.Errorf("glyph %c adult %v, want %c %v", snap.Glyph, snap.Adult, tt.glyph, tt.adult)
			}
		})
	}
}

func TestSpatialGridQuery(t *testing.T) {
	g := NewSpatialGrid(40, 40, 8)
	for i, p := range []r2.Vec{{X: 1, Y: 1}, {X: 9, Y: 1}, {X: 30, Y: 30}, {X: 39.9, Y: 39.9}} {
		g.Insert(Neighbor{Index: i, Species: "oink", Pos: p})
	}

	got := g.QueryRadiusInto(nil, r2.Vec{X: 5, Y: 1}, 4, "oink", false)
	if len(got) != 2 {
		t.Fatalf("query returned %d, want 2", len(got))
	}
	for _, n := range got {
		if n.DistSq != 16 {
			t.Errorf("neighbor %d DistSq = %v, want 16", n.Index, n.DistSq)
		}
	}

	got = g.QueryRadiusInto(got[:0], r2.Vec{X: 35, Y: 35}, 8, "", false)
	if len(got) != 2 {
		t.Errorf("corner query returned %d, want 2", len(got))
	}

	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d", g.Len())
	}
}
