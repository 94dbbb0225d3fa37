// Package explore implements room-aware frontier exploration: a
// long-lived controller that maps the dungeon one tile per turn, halting
// on anything a player would want to react to.
package explore

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/RafeHatfield/yarl-sub007/internal/game"
	"github.com/RafeHatfield/yarl-sub007/internal/protocol"
)

// Stop reasons. Compared by exact string elsewhere, so these are the
// single source of truth.
const (
	ReasonAllExplored = "All areas explored"
	ReasonUnreachable = "Cannot reach unexplored areas"
	ReasonOscillation = "Movement blocked: oscillation detected"
	ReasonNothingLeft = "Nothing left to explore"
	ReasonVault       = "Discovered treasure vault!"
	ReasonSecretDoor  = "Found secret door!"
	ReasonChest       = "Found chest"
	ReasonStairs      = "Stairs found"
	ReasonTookDamage  = "Took damage"
)

// IsTerminalReason reports whether a stop reason means the floor is
// exhaustively explored, as opposed to a transient halt the caller may
// retry after handling.
func IsTerminalReason(reason string) bool {
	return reason == ReasonAllExplored || reason == ReasonUnreachable
}

// startQuotes are cosmetic flavor lines returned by Start for the UI.
var startQuotes = []string{
	"Time to map this place.",
	"Onward, into the dark.",
	"Every corridor hides something.",
	"Let's see where this goes.",
}

const (
	positionHistoryLen = 6
	vaultCellSize      = 8
	vaultScanRadius    = 2
)

// AutoExplore owns one exploration run's state. A run begins at Start and
// ends at the first matching stop condition; the caller restarts
// explicitly after handling the stop reason.
type AutoExplore struct {
	log *log.Logger
	rng *rand.Rand

	active      bool
	currentPath []game.Pos
	currentRoom *game.Rect
	targetTile  *game.Pos
	stopReason  string

	knownItems      map[*game.Entity]struct{}
	knownMonsters   map[*game.Entity]struct{}
	knownStairs     map[game.Pos]struct{}
	exploredAtStart map[game.Pos]struct{}
	visitedVaults   map[game.Pos]struct{}

	posHistory *PosRing
	lastHP     int
}

func NewAutoExplore(logger *log.Logger, rng *rand.Rand) *AutoExplore {
	return &AutoExplore{
		log:           logger,
		rng:           rng,
		visitedVaults: make(map[game.Pos]struct{}),
		posHistory:    NewPosRing(positionHistoryLen),
	}
}

func (ae *AutoExplore) IsActive() bool     { return ae.active }
func (ae *AutoExplore) StopReason() string { return ae.stopReason }

// Stop deactivates the run and records why. Path and target are always
// cleared together with active, preserving the controller invariant.
func (ae *AutoExplore) Stop(reason string) {
	ae.active = false
	ae.currentPath = nil
	ae.currentRoom = nil
	ae.targetTile = nil
	ae.stopReason = reason
}

// Start begins a fresh run. It refuses to activate when the map holds no
// unexplored walkable tile at all; otherwise the controller would
// activate and immediately stop every turn. All "known" sets are cleared
// and re-seeded from what is visible right now, so a run never halts on
// threats and loot the player has already acknowledged.
func (ae *AutoExplore) Start(m *game.Map, entities []*game.Entity, vis *game.Visibility, player *game.Entity) string {
	if !m.AnyUnexplored() {
		ae.Stop(ReasonNothingLeft)
		return ReasonNothingLeft
	}

	ae.active = true
	ae.currentPath = nil
	ae.currentRoom = nil
	ae.targetTile = nil
	ae.stopReason = ""
	ae.posHistory.Reset()

	// visitedVaults deliberately survives restarts: a vault halt that
	// re-fired on every Start would wedge the caller in a halt/restart
	// loop while standing inside the footprint.
	ae.knownItems = make(map[*game.Entity]struct{})
	ae.knownMonsters = make(map[*game.Entity]struct{})
	ae.knownStairs = make(map[game.Pos]struct{})
	ae.exploredAtStart = m.ExploredSet()

	for _, e := range entities {
		if !vis.IsInFOV(e.X, e.Y) {
			continue
		}
		if e.Has(game.CompAI) {
			ae.knownMonsters[e] = struct{}{}
		}
		if e.Lootable() || e.Has(game.CompChest) || e.Has(game.CompSignpost) {
			ae.knownItems[e] = struct{}{}
		}
		if e.Has(game.CompStairs) {
			ae.knownStairs[e.Pos()] = struct{}{}
		}
	}
	// Stairs underfoot count as known even if FOV is degenerate.
	for _, e := range entities {
		if e.Has(game.CompStairs) && e.Pos() == player.Pos() {
			ae.knownStairs[e.Pos()] = struct{}{}
		}
	}

	if f := player.Fighter(); f != nil {
		ae.lastHP = f.HP
	}

	return startQuotes[ae.rng.Intn(len(startQuotes))]
}

// NextAction is the per-turn step function. Idle (inactive or stopped)
// returns nil; the caller must Start again to resume.
func (ae *AutoExplore) NextAction(m *game.Map, entities []*game.Entity, vis *game.Visibility, player *game.Entity) *protocol.Action {
	if !ae.active {
		return nil
	}
	if player == nil {
		if ae.log != nil {
			ae.log.Printf("ERROR auto-explore stepped with no player")
		}
		return nil
	}

	ae.posHistory.Push(player.Pos())
	if ae.posHistory.TwoTileOscillation() {
		ae.Stop(ReasonOscillation)
		return nil
	}

	if reason, stopped := ae.checkStopConditions(m, entities, vis, player); stopped {
		ae.Stop(reason)
		return nil
	}

	if len(ae.currentPath) > 0 {
		return ae.followPath(player)
	}

	target, ok := ae.pickTarget(m, player)
	if !ok {
		ae.Stop(ReasonAllExplored)
		return nil
	}
	ae.targetTile = &target

	path := FindPath(ae.log, m, excludePlayer(entities, player), player.Pos(), target)
	if len(path) == 0 {
		ae.Stop(ReasonUnreachable)
		return nil
	}
	ae.currentPath = path
	return ae.followPath(player)
}

// checkStopConditions evaluates the prioritized checklist; first match
// wins. It also rolls the HP tracker forward.
func (ae *AutoExplore) checkStopConditions(m *game.Map, entities []*game.Entity, vis *game.Visibility, player *game.Entity) (string, bool) {
	hp := 0
	if f := player.Fighter(); f != nil {
		hp = f.HP
	}
	prevHP := ae.lastHP
	ae.lastHP = hp

	newlyDiscovered := func(p game.Pos) bool {
		_, pre := ae.exploredAtStart[p]
		return !pre
	}

	// a. New hostile in view.
	for _, e := range entities {
		if !e.Hostile() || !vis.IsInFOV(e.X, e.Y) {
			continue
		}
		if _, known := ae.knownMonsters[e]; !known {
			return fmt.Sprintf("Monster spotted: %s", e.Name), true
		}
	}

	// b. Standing inside an unflagged treasure-vault footprint.
	if ae.nearGoldVein(m, player.Pos()) {
		cell := game.Pos{X: floorDiv(player.X, vaultCellSize), Y: floorDiv(player.Y, vaultCellSize)}
		if _, seen := ae.visitedVaults[cell]; !seen {
			ae.visitedVaults[cell] = struct{}{}
			return ReasonVault, true
		}
	}

	// c. Newly revealed secret door.
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			t := m.Tile(x, y)
			if !t.SecretDoor || !vis.IsInFOV(x, y) {
				continue
			}
			if newlyDiscovered(game.Pos{X: x, Y: y}) {
				return ReasonSecretDoor, true
			}
		}
	}

	// d-f. Points of interest in newly discovered tiles.
	for _, e := range entities {
		if !vis.IsInFOV(e.X, e.Y) || !newlyDiscovered(e.Pos()) {
			continue
		}
		if _, known := ae.knownItems[e]; known {
			continue
		}
		if ch := e.Chest(); ch != nil && !ch.Opened {
			return ReasonChest, true
		}
		if sp := e.Signpost(); sp != nil && !sp.Read {
			return fmt.Sprintf("Found %s", e.Name), true
		}
		if e.Lootable() {
			return fmt.Sprintf("Found %s", e.Name), true
		}
	}

	// g. Standing on stairs not known at run start.
	for _, e := range entities {
		if e.Has(game.CompStairs) && e.Pos() == player.Pos() {
			if _, known := ae.knownStairs[e.Pos()]; !known {
				return ReasonStairs, true
			}
		}
	}

	// h. HP dropped since the previous turn.
	if hp < prevHP {
		return ReasonTookDamage, true
	}

	// i. Active negative status effect.
	if se := player.StatusEffects(); se != nil {
		if name := se.ActiveNegative(); name != "" {
			return fmt.Sprintf("Affected by %s", name), true
		}
	}

	return "", false
}

func (ae *AutoExplore) followPath(player *game.Entity) *protocol.Action {
	next := ae.currentPath[0]
	ae.currentPath = ae.currentPath[1:]

	dx := next.X - player.X
	dy := next.Y - player.Y
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		// Path no longer lines up with where the player actually is;
		// drop it and retarget next turn.
		ae.currentPath = nil
		ae.targetTile = nil
		return protocol.Noop()
	}
	if len(ae.currentPath) == 0 {
		ae.targetTile = nil
	}
	return protocol.Step(dx, dy)
}

// pickTarget prefers finishing the current room before jumping to a
// distant frontier, which yields natural room-by-room sweeps.
func (ae *AutoExplore) pickTarget(m *game.Map, player *game.Entity) (game.Pos, bool) {
	if room, ok := DetectRoom(m, player.Pos()); ok {
		ae.currentRoom = &room
		if p, found := NearestUnexploredIn(m, player.Pos(), &room); found {
			return p, true
		}
	} else {
		ae.currentRoom = nil
	}
	return NearestUnexplored(m, player.Pos())
}

// nearGoldVein reports a vault wall within the scan radius of p.
func (ae *AutoExplore) nearGoldVein(m *game.Map, p game.Pos) bool {
	for dy := -vaultScanRadius; dy <= vaultScanRadius; dy++ {
		for dx := -vaultScanRadius; dx <= vaultScanRadius; dx++ {
			if t := m.Tile(p.X+dx, p.Y+dy); t != nil && t.GoldVein {
				return true
			}
		}
	}
	return false
}

func excludePlayer(entities []*game.Entity, player *game.Entity) []*game.Entity {
	out := make([]*game.Entity, 0, len(entities))
	for _, e := range entities {
		if e != player {
			out = append(out, e)
		}
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
