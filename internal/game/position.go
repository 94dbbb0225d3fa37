package game

// Pos is a grid coordinate. It doubles as a map key and a search node.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an axis-aligned inclusive bounding box.
type Rect struct {
	X1, Y1, X2, Y2 int
}

func (r Rect) Contains(p Pos) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

func (r Rect) Center() Pos {
	return Pos{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

func (r Rect) Intersects(o Rect) bool {
	return r.X1 <= o.X2 && r.X2 >= o.X1 && r.Y1 <= o.Y2 && r.Y2 >= o.Y1
}

// CardinalDirs is the fixed 4-neighbor expansion order. Search code relies
// on this order being stable so runs replay bit-identically.
var CardinalDirs = [4]Pos{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// AllDirs is the fixed 8-neighbor order: cardinals first, then diagonals.
var AllDirs = [8]Pos{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1},
	{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ChebyshevDist is the board distance when diagonal steps are allowed.
func ChebyshevDist(a, b Pos) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether a and b touch orthogonally or diagonally.
func Adjacent(a, b Pos) bool {
	return a != b && ChebyshevDist(a, b) == 1
}

// StepToward returns the unit delta that moves from a toward b.
func StepToward(a, b Pos) (dx, dy int) {
	if b.X > a.X {
		dx = 1
	} else if b.X < a.X {
		dx = -1
	}
	if b.Y > a.Y {
		dy = 1
	} else if b.Y < a.Y {
		dy = -1
	}
	return dx, dy
}
