package explore

import "github.com/RafeHatfield/yarl-sub007/internal/game"

const (
	// roomFloodCap bounds the flood fill; big open areas read as "not a
	// room" rather than costing more work.
	roomFloodCap = 100
	// roomMinTiles is the 3x3 minimum below which a space is a corridor.
	roomMinTiles = 9
)

// DetectRoom approximates the room containing pos with a bounded 4-way
// flood fill over walkable tiles. It returns the bounding box of the
// filled area, or ok=false for corridors, dead ends and oversized open
// areas. This is a cheap locality heuristic, not a room registry; it
// deliberately does not consult generator metadata.
func DetectRoom(m *game.Map, pos game.Pos) (game.Rect, bool) {
	if !m.Walkable(pos.X, pos.Y) {
		return game.Rect{}, false
	}

	visited := map[game.Pos]bool{pos: true}
	queue := []game.Pos{pos}

	for head := 0; head < len(queue) && len(visited) < roomFloodCap; head++ {
		cur := queue[head]
		for _, d := range game.CardinalDirs {
			np := game.Pos{X: cur.X + d.X, Y: cur.Y + d.Y}
			if visited[np] {
				continue
			}
			if !m.Walkable(np.X, np.Y) {
				continue
			}
			visited[np] = true
			queue = append(queue, np)
		}
	}

	if len(visited) < roomMinTiles || len(visited) >= roomFloodCap {
		return game.Rect{}, false
	}

	r := game.Rect{X1: pos.X, Y1: pos.Y, X2: pos.X, Y2: pos.Y}
	for p := range visited {
		if p.X < r.X1 {
			r.X1 = p.X
		}
		if p.X > r.X2 {
			r.X2 = p.X
		}
		if p.Y < r.Y1 {
			r.Y1 = p.Y
		}
		if p.Y > r.Y2 {
			r.Y2 = p.Y
		}
	}
	return r, true
}
