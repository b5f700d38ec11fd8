package systems

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/pthm-cable/cavernlife/components"
)

// Region is a maximal 4-connected set of cells matching one predicate.
// Regions only live for the duration of a generation pass.
type Region struct {
	ID      int
	Tiles   []Point // members in discovery order
	Members mapset.Set[Point]
	Edges   []Point // members 4-adjacent to a non-floor or missing cell

	Main       bool
	Accessible bool
}

// Size returns the number of member cells.
func (r *Region) Size() int { return len(r.Tiles) }

var orthogonal = [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindRegions partitions the cells matching match into 4-connected regions
// by breadth-first flood fill, scanning rows top to bottom.
func FindRegions(g *Grid, match func(c *components.Cell) bool) []*Region {
	w, h := g.Width(), g.Height()
	visited := make([]bool, w*h)
	var regions []*Region
	var queue []Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := g.index(x, y)
			if visited[i] || !match(&g.front[i]) {
				continue
			}

			r := &Region{ID: len(regions), Members: mapset.New[Point]()}
			visited[i] = true
			queue = append(queue[:0], Point{x, y})
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				r.Tiles = append(r.Tiles, p)
				r.Members.Put(p)

				for _, d := range orthogonal {
					n := Point{p.X + d.X, p.Y + d.Y}
					c, ok := g.Get(n.X, n.Y)
					if !ok {
						continue
					}
					j := g.index(n.X, n.Y)
					if visited[j] || !match(c) {
						continue
					}
					visited[j] = true
					queue = append(queue, n)
				}
			}
			regions = append(regions, r)
		}
	}
	return regions
}

// IsFloorCell matches floor cells.
func IsFloorCell(c *components.Cell) bool { return c.IsFloor() }

// IsSolidCell matches walls and the border ring, which count as wall for
// region discovery.
func IsSolidCell(c *components.Cell) bool {
	return c.Kind == components.KindWall || c.Kind == components.KindBorder
}

// Contains reports whether p is a member of the region.
func (r *Region) Contains(p Point) bool { return r.Members.Has(p) }

// computeEdges fills r.Edges with members that have an orthogonal neighbor
// outside the region, so passages can be carved from them.
func (r *Region) computeEdges() {
	r.Edges = r.Edges[:0]
	for _, p := range r.Tiles {
		for _, d := range orthogonal {
			if !r.Contains(Point{p.X + d.X, p.Y + d.Y}) {
				r.Edges = append(r.Edges, p)
				break
			}
		}
	}
}

// sortRegionsBySize orders regions largest first, keeping discovery order
// between equals, and renumbers their IDs to match.
func sortRegionsBySize(regions []*Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Size() > regions[j].Size()
	})
	for i, r := range regions {
		r.ID = i
	}
}

// regionGraph tracks passages between regions as an undirected graph keyed
// by region ID.
type regionGraph struct {
	g       *simple.UndirectedGraph
	regions []*Region
}

func newRegionGraph(regions []*Region) *regionGraph {
	g := simple.NewUndirectedGraph()
	for _, r := range regions {
		g.AddNode(simple.Node(r.ID))
	}
	return &regionGraph{g: g, regions: regions}
}

func (rg *regionGraph) connect(a, b *Region) {
	rg.g.SetEdge(simple.Edge{F: simple.Node(a.ID), T: simple.Node(b.ID)})
}

func (rg *regionGraph) connected(a, b *Region) bool {
	return rg.g.HasEdgeBetween(int64(a.ID), int64(b.ID))
}

func (rg *regionGraph) degree(r *Region) int {
	return rg.g.From(int64(r.ID)).Len()
}

// markAccessible flags every region reachable from the main region and
// returns the number still unreachable.
func (rg *regionGraph) markAccessible(main *Region) int {
	var bf traverse.BreadthFirst
	bf.Walk(rg.g, simple.Node(main.ID), func(graph.Node, int) bool { return false })

	unreachable := 0
	for _, r := range rg.regions {
		r.Accessible = bf.Visited(simple.Node(r.ID))
		if !r.Accessible {
			unreachable++
		}
	}
	return unreachable
}

// closestEdgePair finds the pair of edge tiles between a and b with the
// smallest squared distance. The first pair found wins ties.
func closestEdgePair(a, b *Region) (pa, pb Point, distSq int, ok bool) {
	distSq = -1
	for _, ta := range a.Edges {
		for _, tb := range b.Edges {
			d := ta.DistSq(tb)
			if distSq < 0 || d < distSq {
				pa, pb, distSq = ta, tb, d
			}
		}
	}
	return pa, pb, distSq, distSq >= 0
}

// UnreachableFloor counts floor cells not 4-connected to the largest floor
// region. A fully connected cavern reports zero.
func UnreachableFloor(g *Grid) int {
	regions := FindRegions(g, IsFloorCell)
	if len(regions) <= 1 {
		return 0
	}
	sortRegionsBySize(regions)
	n := 0
	for _, r := range regions[1:] {
		n += r.Size()
	}
	return n
}
