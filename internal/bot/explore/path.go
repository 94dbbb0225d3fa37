package explore

import (
	"container/heap"
	"log"

	"github.com/RafeHatfield/yarl-sub007/internal/game"
)

// Move costs. Diagonals cost 1.5x cardinals so a diagonal shortcut is not
// unrealistically cheap (octile-style weighting).
const (
	costCardinal = 10
	costDiagonal = 15
)

type pathNode struct {
	pos  game.Pos
	cost int
	seq  int // insertion order, breaks cost ties deterministically
	idx  int
}

type pathQueue []*pathNode

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}
func (q pathQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].idx = i
	q[j].idx = j
}
func (q *pathQueue) Push(x any) {
	n := x.(*pathNode)
	n.idx = len(*q)
	*q = append(*q, n)
}
func (q *pathQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// FindPath computes an ordered route from start to target, excluding the
// start tile. It avoids blocked tiles, hazards and tiles occupied by
// blocking entities. Only the occupancy check is waived at the target
// tile, so a route can end on something standing there; blocked and
// hazard tiles are never traversable, destination included.
//
// An empty result means the target is unreachable; callers escalate that
// to a stop condition instead of retrying. An out-of-bounds start fails
// closed with an error log: that is a bug signal, unlike the ordinary
// high-frequency neighbor bounds checks which are silently skipped.
func FindPath(logger *log.Logger, m *game.Map, entities []*game.Entity, start, target game.Pos) []game.Pos {
	if !m.InBounds(start.X, start.Y) {
		if logger != nil {
			logger.Printf("ERROR pathfinding from out-of-bounds start (%d,%d)", start.X, start.Y)
		}
		return nil
	}
	if !m.InBounds(target.X, target.Y) {
		return nil
	}
	if start == target {
		return nil
	}

	occupied := make(map[game.Pos]bool, len(entities))
	for _, e := range entities {
		if e.Blocks {
			occupied[e.Pos()] = true
		}
	}

	passable := func(p game.Pos) bool {
		if !m.Walkable(p.X, p.Y) || m.HazardAt(p.X, p.Y) {
			return false
		}
		return p == target || !occupied[p]
	}

	dist := map[game.Pos]int{start: 0}
	prev := make(map[game.Pos]game.Pos)
	seq := 0

	q := &pathQueue{}
	heap.Init(q)
	heap.Push(q, &pathNode{pos: start, cost: 0, seq: seq})

	for q.Len() > 0 {
		n := heap.Pop(q).(*pathNode)
		if n.pos == target {
			return reconstruct(prev, start, target)
		}
		if n.cost > dist[n.pos] {
			continue // stale queue entry
		}
		for i, d := range game.AllDirs {
			np := game.Pos{X: n.pos.X + d.X, Y: n.pos.Y + d.Y}
			if !m.InBounds(np.X, np.Y) {
				continue
			}
			if !passable(np) {
				continue
			}
			stepCost := costCardinal
			if i >= 4 {
				stepCost = costDiagonal
			}
			nc := n.cost + stepCost
			if old, seen := dist[np]; seen && nc >= old {
				continue
			}
			dist[np] = nc
			prev[np] = n.pos
			seq++
			heap.Push(q, &pathNode{pos: np, cost: nc, seq: seq})
		}
	}
	return nil
}

func reconstruct(prev map[game.Pos]game.Pos, start, target game.Pos) []game.Pos {
	var rev []game.Pos
	for cur := target; cur != start; cur = prev[cur] {
		rev = append(rev, cur)
	}
	out := make([]game.Pos, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}
