package game

// Tile is one map cell. Explored flips true the first time the tile enters
// the player's field of view and never flips back.
type Tile struct {
	Blocked    bool
	BlockSight bool
	Explored   bool

	// GoldVein marks vault walls; a cluster of them near the player is the
	// treasure-vault heuristic AutoExplore stops for.
	GoldVein bool
	// SecretDoor marks a revealed secret door tile.
	SecretDoor bool
}

// Map is the dungeon grid plus the dynamic hazard overlay. Hazards are
// transient ground effects: impassable for pathing, but not wall tiles.
type Map struct {
	Width  int
	Height int

	tiles   []Tile
	hazards map[Pos]struct{}

	Rooms []Rect
}

func NewMap(width, height int) *Map {
	m := &Map{
		Width:   width,
		Height:  height,
		tiles:   make([]Tile, width*height),
		hazards: make(map[Pos]struct{}),
	}
	// Start solid; generation carves floors.
	for i := range m.tiles {
		m.tiles[i].Blocked = true
		m.tiles[i].BlockSight = true
	}
	return m
}

func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Tile returns a pointer into the grid, or nil when out of bounds.
func (m *Map) Tile(x, y int) *Tile {
	if !m.InBounds(x, y) {
		return nil
	}
	return &m.tiles[y*m.Width+x]
}

func (m *Map) IsExplored(x, y int) bool {
	t := m.Tile(x, y)
	return t != nil && t.Explored
}

// Walkable reports whether movement onto (x,y) is possible, ignoring
// entities and hazards.
func (m *Map) Walkable(x, y int) bool {
	t := m.Tile(x, y)
	return t != nil && !t.Blocked
}

func (m *Map) HazardAt(x, y int) bool {
	_, ok := m.hazards[Pos{X: x, Y: y}]
	return ok
}

func (m *Map) SetHazard(x, y int) {
	if m.InBounds(x, y) {
		m.hazards[Pos{X: x, Y: y}] = struct{}{}
	}
}

func (m *Map) ClearHazard(x, y int) {
	delete(m.hazards, Pos{X: x, Y: y})
}

// AnyUnexplored reports whether at least one walkable tile is still
// unexplored. AutoExplore refuses to start when this is false.
func (m *Map) AnyUnexplored() bool {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			t := &m.tiles[y*m.Width+x]
			if !t.Blocked && !t.Explored {
				return true
			}
		}
	}
	return false
}

// ExploredSet snapshots every explored position. Used by AutoExplore at
// run start to tell new discoveries from pre-existing map knowledge.
func (m *Map) ExploredSet() map[Pos]struct{} {
	out := make(map[Pos]struct{})
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.tiles[y*m.Width+x].Explored {
				out[Pos{X: x, Y: y}] = struct{}{}
			}
		}
	}
	return out
}

func (m *Map) carve(x, y int) {
	if t := m.Tile(x, y); t != nil {
		t.Blocked = false
		t.BlockSight = false
	}
}

func (m *Map) carveRoom(r Rect) {
	for y := r.Y1; y <= r.Y2; y++ {
		for x := r.X1; x <= r.X2; x++ {
			m.carve(x, y)
		}
	}
}
