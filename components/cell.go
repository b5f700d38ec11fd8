package components

// CellKind tags the variant stored in a Cell.
type CellKind uint8

const (
	KindFloor CellKind = iota
	KindWall
	KindWater
	KindBorder
)

func (k CellKind) String() string {
	switch k {
	case KindFloor:
		return "floor"
	case KindWall:
		return "wall"
	case KindWater:
		return "water"
	case KindBorder:
		return "border"
	default:
		return "unknown"
	}
}

// Glyph returns the single-character map symbol for the kind.
func (k CellKind) Glyph() byte {
	switch k {
	case KindFloor:
		return '.'
	case KindWall:
		return '#'
	case KindWater:
		return '~'
	case KindBorder:
		return '+'
	default:
		return '?'
	}
}

// Movement multipliers per kind. Zero is impassable.
const (
	FloorMovement = 1.0
	WaterMovement = 0.25
)

// MovementFor returns the movement-speed multiplier of a kind.
func MovementFor(k CellKind) float64 {
	switch k {
	case KindFloor:
		return FloorMovement
	case KindWater:
		return WaterMovement
	default:
		return 0
	}
}

// Cell is one environmental grid cell. Kind selects which of the
// kind-specific fields are meaningful: Algae for floors, Phase for borders.
type Cell struct {
	X           int      `inspect:"label"`
	Y           int      `inspect:"label"`
	Kind        CellKind `inspect:"label"`
	Temperature float64  `inspect:"label,fmt:%.2f°"`
	Humidity    float64  `inspect:"bar"`
	Movement    float64  `inspect:"label"`
	Algae       float64  `inspect:"bar"`
	Phase       float64  `inspect:"label,fmt:%.1fh"`
}

// NewCell builds a cell of the given kind with kind-appropriate movement.
func NewCell(x, y int, kind CellKind, temperature, humidity float64) Cell {
	return Cell{
		X:           x,
		Y:           y,
		Kind:        kind,
		Temperature: temperature,
		Humidity:    humidity,
		Movement:    MovementFor(kind),
	}
}

// IsFloor reports whether the cell carries algae.
func (c *Cell) IsFloor() bool { return c.Kind == KindFloor }
