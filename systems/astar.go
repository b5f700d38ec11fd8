package systems

import (
	"container/heap"
	"math"
)

// PathPlanner finds least-cost routes across a grid with A*. Step cost is
// the step length divided by the destination cell's movement multiplier, so
// routes prefer dry floor over shallow water. Walls and the border ring are
// never entered.
type PathPlanner struct {
	grid *Grid

	// Reusable search state, sized to the grid
	open   nodeHeap
	nodes  []*astarNode
	closed []bool
	from   []int
	gScore []float64
}

// astarNode is a node in the A* search.
type astarNode struct {
	id    int
	f     float64 // f = g + h (priority)
	index int     // heap index, -1 once popped
}

// nodeHeap implements heap.Interface for the open set.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

var neighbors8 = [8]Point{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1}, // cardinal
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1}, // diagonal
}

// NewPathPlanner creates a planner over g. A planner is not safe for
// concurrent use.
func NewPathPlanner(g *Grid) *PathPlanner {
	n := g.Len()
	return &PathPlanner{
		grid:   g,
		nodes:  make([]*astarNode, n),
		closed: make([]bool, n),
		from:   make([]int, n),
		gScore: make([]float64, n),
	}
}

func (a *PathPlanner) passable(x, y int) bool {
	c, ok := a.grid.Get(x, y)
	return ok && c.Movement > 0
}

func (a *PathPlanner) reset() {
	a.open = a.open[:0]
	for i := range a.nodes {
		a.nodes[i] = nil
		a.closed[i] = false
		a.from[i] = -1
		a.gScore[i] = math.Inf(1)
	}
}

// FindPath returns the cells of a least-cost route from start to goal, both
// included, or nil when either end is impassable or no route exists.
// Diagonal steps may not cut past a blocked corner.
func (a *PathPlanner) FindPath(start, goal Point) []Point {
	if !a.passable(start.X, start.Y) || !a.passable(goal.X, goal.Y) {
		return nil
	}
	if start == goal {
		return []Point{start}
	}

	a.reset()
	w := a.grid.Width()
	startID := a.grid.index(start.X, start.Y)
	goalID := a.grid.index(goal.X, goal.Y)

	a.gScore[startID] = 0
	a.nodes[startID] = &astarNode{id: startID, f: heuristic(start, goal)}
	heap.Push(&a.open, a.nodes[startID])

	for a.open.Len() > 0 {
		current := heap.Pop(&a.open).(*astarNode)
		if current.id == goalID {
			return a.reconstructPath(startID, goalID)
		}
		a.closed[current.id] = true
		cx, cy := current.id%w, current.id/w

		for i, d := range neighbors8 {
			nx, ny := cx+d.X, cy+d.Y
			if !a.passable(nx, ny) {
				continue
			}
			step := 1.0
			if i >= 4 {
				if !a.passable(nx, cy) || !a.passable(cx, ny) {
					continue
				}
				step = math.Sqrt2
			}

			nid := a.grid.index(nx, ny)
			if a.closed[nid] {
				continue
			}

			tentative := a.gScore[current.id] + step/a.grid.front[nid].Movement
			if tentative >= a.gScore[nid] {
				continue
			}
			a.from[nid] = current.id
			a.gScore[nid] = tentative
			f := tentative + heuristic(Point{nx, ny}, goal)

			if n := a.nodes[nid]; n != nil && n.index >= 0 {
				n.f = f
				heap.Fix(&a.open, n.index)
				continue
			}
			a.nodes[nid] = &astarNode{id: nid, f: f}
			heap.Push(&a.open, a.nodes[nid])
		}
	}
	return nil
}

// PathCost sums the step costs along a path produced by FindPath.
func (a *PathPlanner) PathCost(path []Point) float64 {
	var cost float64
	for i := 1; i < len(path); i++ {
		step := math.Sqrt(float64(path[i].DistSq(path[i-1])))
		cost += step / a.grid.front[a.grid.index(path[i].X, path[i].Y)].Movement
	}
	return cost
}

// heuristic is the Euclidean distance, admissible because no cell moves
// faster than dry floor.
func heuristic(p, q Point) float64 {
	return math.Sqrt(float64(p.DistSq(q)))
}

func (a *PathPlanner) reconstructPath(startID, goalID int) []Point {
	w := a.grid.Width()
	var ids []int
	for id := goalID; id != startID; id = a.from[id] {
		ids = append(ids, id)
	}
	ids = append(ids, startID)

	path := make([]Point, len(ids))
	for i := range ids {
		id := ids[len(ids)-1-i]
		path[i] = Point{id % w, id / w}
	}
	return path
}
