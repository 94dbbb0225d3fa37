package game

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/RafeHatfield/yarl-sub007/internal/protocol"
)

const fovRadius = 8

// World owns one live dungeon run: the current floor, the player and the
// per-turn visibility snapshot. It is the single writer; decision code
// only reads it and hands back intent actions.
type World struct {
	gen    *Generator
	floor  *Floor
	player *Entity
	vis    *Visibility

	turn uint64
	over bool
	log  *log.Logger
}

func NewWorld(seed int64, logger *log.Logger) *World {
	w := &World{
		gen: NewGenerator(seed),
		log: logger,
	}
	w.floor = w.gen.Generate(1, DefaultGenConfig(1))

	p := NewEntity(w.gen.allocID(), "player", w.floor.Start.X, w.floor.Start.Y, true)
	p.Attach(CompFighter, &Fighter{HP: 30, MaxHP: 30, Power: 4, Defense: 1})
	p.Attach(CompInventory, &Inventory{})
	p.Attach(CompStatusEffects, &StatusEffects{})
	w.player = p

	w.vis = ComputeFOV(w.floor.Map, p.Pos(), fovRadius)
	return w
}

func (w *World) Player() *Entity     { return w.player }
func (w *World) Map() *Map           { return w.floor.Map }
func (w *World) Entities() []*Entity { return w.floor.Entities }
func (w *World) Vis() *Visibility    { return w.vis }
func (w *World) Depth() int          { return w.floor.Depth }
func (w *World) Turn() uint64        { return w.turn }
func (w *World) Over() bool          { return w.over }

// Apply resolves exactly one action, then runs monster turns, status
// ticks and the FOV recompute. It never fails: unusable intents resolve
// as a wasted turn.
func (w *World) Apply(a *protocol.Action) {
	if w.over {
		return
	}

	switch {
	case a == nil || a.IsNoop():
		// wait
	case a.Pickup:
		w.applyPickup()
	case a.InventoryIndex != nil:
		w.applyUseItem(*a.InventoryIndex)
	case a.TakeStairs:
		w.applyTakeStairs()
	default:
		if dx, dy, ok := a.Delta(); ok {
			w.applyMove(dx, dy)
		}
	}

	if w.over {
		return
	}
	w.monstersAct()
	w.tickStatusEffects()
	w.vis = ComputeFOV(w.floor.Map, w.player.Pos(), fovRadius)
	w.turn++

	if w.player.Fighter().HP <= 0 {
		w.over = true
		if w.log != nil {
			w.log.Printf("player died on depth %d turn %d", w.floor.Depth, w.turn)
		}
	}
}

func (w *World) applyMove(dx, dy int) {
	nx := w.player.X + dx
	ny := w.player.Y + dy

	if target := BlockerAt(w.floor.Entities, nx, ny); target != nil && target.Hostile() {
		w.attack(w.player, target)
		return
	}
	if !w.floor.Map.Walkable(nx, ny) || w.floor.Map.HazardAt(nx, ny) {
		return
	}
	if BlockerAt(w.floor.Entities, nx, ny) != nil {
		return
	}
	w.player.X = nx
	w.player.Y = ny

	// Walking over a signpost reads it.
	for _, e := range w.floor.Entities {
		if e.X == nx && e.Y == ny {
			if sp := e.Signpost(); sp != nil {
				sp.Read = true
			}
		}
	}
}

func (w *World) attack(attacker, defender *Entity) {
	af := attacker.Fighter()
	df := defender.Fighter()
	if af == nil || df == nil {
		return
	}
	dmg := af.Power - df.Defense
	if dmg < 1 {
		dmg = 1
	}
	df.TakeDamage(dmg)
	if df.HP <= 0 && defender != w.player {
		defender.Blocks = false
		defender.Name = "remains of " + defender.Name
	}
}

func (w *World) applyPickup() {
	inv := w.player.Inventory()
	for _, e := range w.floor.Entities {
		if e.X != w.player.X || e.Y != w.player.Y || e == w.player {
			continue
		}
		if ch := e.Chest(); ch != nil && !ch.Opened {
			ch.Opened = true
			potion := NewEntity(w.gen.allocID(), "healing potion", -1, -1, false)
			potion.Attach(CompItem, &Item{Kind: ItemPotion, HealAmount: 10})
			inv.Items = append(inv.Items, potion)
			return
		}
		if e.Has(CompItem) {
			inv.Items = append(inv.Items, e)
			w.removeEntity(e)
			return
		}
	}
}

// applyUseItem consumes the item at the given index of the
// alphabetically-sorted listing, matching what an inventory UI shows.
func (w *World) applyUseItem(index int) {
	inv := w.player.Inventory()
	sorted := inv.SortedByDisplayName()
	if index < 0 || index >= len(sorted) {
		return
	}
	item := sorted[index]
	it := item.Item()
	if it == nil {
		return
	}
	if it.HealAmount > 0 {
		w.player.Fighter().Heal(it.HealAmount)
	}
	for i, e := range inv.Items {
		if e == item {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			break
		}
	}
}

func (w *World) applyTakeStairs() {
	on := false
	for _, e := range w.floor.Entities {
		if e.Has(CompStairs) && e.X == w.player.X && e.Y == w.player.Y {
			on = true
			break
		}
	}
	if !on {
		return
	}
	w.Descend()
}

// Descend generates the next floor from the shared generator stream and
// moves the player to its start tile. Inventory and HP carry over.
func (w *World) Descend() {
	depth := w.floor.Depth + 1
	w.floor = w.gen.Generate(depth, DefaultGenConfig(depth))
	w.player.X = w.floor.Start.X
	w.player.Y = w.floor.Start.Y
	w.vis = ComputeFOV(w.floor.Map, w.player.Pos(), fovRadius)
}

func (w *World) removeEntity(target *Entity) {
	for i, e := range w.floor.Entities {
		if e == target {
			w.floor.Entities = append(w.floor.Entities[:i], w.floor.Entities[i+1:]...)
			return
		}
	}
}

// monstersAct runs a deterministic chase behavior: monsters that can see
// the player close in and attack when adjacent. Entities act in slice
// order, which is stable across replays.
func (w *World) monstersAct() {
	pp := w.player.Pos()
	for _, e := range w.floor.Entities {
		if !e.Hostile() {
			continue
		}
		ai := e.AI()
		if ChebyshevDist(e.Pos(), pp) > ai.SightRange {
			continue
		}
		if !lineOfSight(w.floor.Map, e.Pos(), pp) {
			continue
		}
		if Adjacent(e.Pos(), pp) {
			w.attack(e, w.player)
			continue
		}
		if next, ok := w.nextStepToward(e.Pos(), pp); ok {
			if BlockerAt(w.floor.Entities, next.X, next.Y) == nil {
				e.X = next.X
				e.Y = next.Y
			}
		}
	}
}

// nextStepToward is a bounded BFS for monster chasing: first step of a
// shortest 4-way route, ignoring other monsters (they resolve by blocking
// at move time). Fixed neighbor order keeps it deterministic.
func (w *World) nextStepToward(start, target Pos) (Pos, bool) {
	type node struct {
		p     Pos
		first Pos
	}
	m := w.floor.Map
	visited := map[Pos]bool{start: true}
	queue := make([]node, 0, 64)
	for _, d := range CardinalDirs {
		np := Pos{X: start.X + d.X, Y: start.Y + d.Y}
		if np == target {
			return np, true
		}
		if !m.Walkable(np.X, np.Y) || m.HazardAt(np.X, np.Y) {
			continue
		}
		visited[np] = true
		queue = append(queue, node{p: np, first: np})
	}
	const maxExpand = 400
	for head := 0; head < len(queue) && head < maxExpand; head++ {
		n := queue[head]
		for _, d := range CardinalDirs {
			np := Pos{X: n.p.X + d.X, Y: n.p.Y + d.Y}
			if np == target {
				return n.first, true
			}
			if visited[np] {
				continue
			}
			if !m.Walkable(np.X, np.Y) || m.HazardAt(np.X, np.Y) {
				continue
			}
			visited[np] = true
			queue = append(queue, node{p: np, first: n.first})
		}
	}
	return Pos{}, false
}

func (w *World) tickStatusEffects() {
	se := w.player.StatusEffects()
	if se == nil {
		return
	}
	if se.Poisoned > 0 {
		se.Poisoned--
		w.player.Fighter().TakeDamage(1)
	}
	if se.Confused > 0 {
		se.Confused--
	}
	if se.Slowed > 0 {
		se.Slowed--
	}
	if se.Blinded > 0 {
		se.Blinded--
	}
	if se.Stuck > 0 {
		se.Stuck--
	}
}

// Digest hashes the observable world state. Replays verify it per turn.
func (w *World) Digest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "d=%d t=%d p=%d,%d hp=%d inv=%d|",
		w.floor.Depth, w.turn, w.player.X, w.player.Y,
		w.player.Fighter().HP, len(w.player.Inventory().Items))

	ents := make([]*Entity, len(w.floor.Entities))
	copy(ents, w.floor.Entities)
	sort.Slice(ents, func(i, j int) bool { return ents[i].ID < ents[j].ID })
	for _, e := range ents {
		hp := 0
		if f := e.Fighter(); f != nil {
			hp = f.HP
		}
		fmt.Fprintf(&b, "%d:%d,%d,%d;", e.ID, e.X, e.Y, hp)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
