package game

// Visibility is the per-turn field-of-view snapshot. It is rebuilt after
// every move; consumers only ever ask IsInFOV.
type Visibility struct {
	visible map[Pos]struct{}
}

// NewVisibility builds a snapshot from an explicit set of visible
// positions. Normal play goes through ComputeFOV; this is for harnesses
// that need exact control over what is in view.
func NewVisibility(positions ...Pos) *Visibility {
	v := &Visibility{visible: make(map[Pos]struct{}, len(positions))}
	for _, p := range positions {
		v.visible[p] = struct{}{}
	}
	return v
}

func (v *Visibility) IsInFOV(x, y int) bool {
	if v == nil {
		return false
	}
	_, ok := v.visible[Pos{X: x, Y: y}]
	return ok
}

// ComputeFOV builds the visibility snapshot for an origin and radius and
// marks every visible tile explored. Line of sight is a straight ray that
// stops at the first sight-blocking tile (the blocker itself stays
// visible, so walls draw correctly).
func ComputeFOV(m *Map, origin Pos, radius int) *Visibility {
	v := &Visibility{visible: make(map[Pos]struct{}, (2*radius+1)*(2*radius+1))}
	if !m.InBounds(origin.X, origin.Y) {
		return v
	}

	for y := origin.Y - radius; y <= origin.Y+radius; y++ {
		for x := origin.X - radius; x <= origin.X+radius; x++ {
			if !m.InBounds(x, y) {
				continue
			}
			dx := x - origin.X
			dy := y - origin.Y
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if lineOfSight(m, origin, Pos{X: x, Y: y}) {
				p := Pos{X: x, Y: y}
				v.visible[p] = struct{}{}
				m.Tile(x, y).Explored = true
			}
		}
	}
	return v
}

// lineOfSight walks a Bresenham line from a to b. Every intermediate tile
// must be transparent; the endpoint may block sight.
func lineOfSight(m *Map, a, b Pos) bool {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 == x1 && y0 == y1 {
			return true
		}
		if (x0 != a.X || y0 != a.Y) && m.Tile(x0, y0).BlockSight {
			return false
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
