package systems

import "gonum.org/v1/gonum/spatial/r2"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// PointAt returns the cell containing pos.
func PointAt(pos r2.Vec) Point {
	return Point{cellCoord(pos.X), cellCoord(pos.Y)}
}

// Center returns the position of the cell's center.
func (p Point) Center() r2.Vec {
	return cellCenter(p.X, p.Y)
}

// DistSq returns the squared Euclidean distance between two points.
func (p Point) DistSq(q Point) int {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Line returns the cells on the Bresenham line from a to b, both ends
// included. Consecutive points differ by at most one on each axis.
func Line(a, b Point) []Point {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	pts := make([]Point, 0, max(dx, -dy)+1)
	x, y := a.X, a.Y
	e := dx + dy
	for {
		pts = append(pts, Point{x, y})
		if x == b.X && y == b.Y {
			return pts
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// Disc calls fn for every cell within radius r of c (x^2 + y^2 <= r^2).
func Disc(c Point, r int, fn func(p Point)) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				fn(Point{c.X + dx, c.Y + dy})
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
