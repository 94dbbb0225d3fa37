package explore

import "github.com/RafeHatfield/yarl-sub007/internal/game"

// frontierTarget is the predicate for exploration candidates: a tile the
// player could stand on that nobody has seen yet.
func frontierTarget(m *game.Map, p game.Pos) bool {
	return m.Walkable(p.X, p.Y) && !m.HazardAt(p.X, p.Y) && !m.IsExplored(p.X, p.Y)
}

// NearestUnexplored finds the closest reachable unexplored walkable tile
// from start, measured in 4-way steps. All edges cost one, so plain BFS
// with early exit is Dijkstra here. The start tile itself never counts:
// the search begins at its neighbors and the current tile is explored by
// definition. Returns ok=false when no such tile is reachable.
func NearestUnexplored(m *game.Map, start game.Pos) (game.Pos, bool) {
	return NearestUnexploredIn(m, start, nil)
}

// NearestUnexploredIn is NearestUnexplored restricted to a bounding
// rectangle. The whole search stays inside bounds, so a "finish this
// room" query cannot wander off through a corridor.
func NearestUnexploredIn(m *game.Map, start game.Pos, bounds *game.Rect) (game.Pos, bool) {
	if !m.InBounds(start.X, start.Y) {
		return game.Pos{}, false
	}

	visited := map[game.Pos]bool{start: true}
	queue := make([]game.Pos, 0, 256)
	queue = append(queue, start)

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, d := range game.CardinalDirs {
			np := game.Pos{X: cur.X + d.X, Y: cur.Y + d.Y}
			if visited[np] {
				continue
			}
			if !m.InBounds(np.X, np.Y) {
				continue
			}
			if bounds != nil && !bounds.Contains(np) {
				continue
			}
			// Blocked and hazard tiles are non-traversable, not merely
			// deprioritized.
			if !m.Walkable(np.X, np.Y) || m.HazardAt(np.X, np.Y) {
				continue
			}
			if frontierTarget(m, np) {
				return np, true
			}
			visited[np] = true
			queue = append(queue, np)
		}
	}
	return game.Pos{}, false
}
