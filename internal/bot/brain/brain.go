// Package brain is the top-level decision engine for autonomous play. It
// classifies every tick into EXPLORE, COMBAT or LOOT from fresh world
// state, wraps AutoExplore, and layers healing, stairs descent and a set
// of anti-stuck fail-safes on top.
package brain

import (
	"log"
	"math/rand"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/explore"
	"github.com/RafeHatfield/yarl-sub007/internal/bot/persona"
	"github.com/RafeHatfield/yarl-sub007/internal/game"
	"github.com/RafeHatfield/yarl-sub007/internal/protocol"
)

// State is the current best classification of the situation, re-derived
// every tick. It is never a committed plan.
type State int

const (
	StateExplore State = iota
	StateCombat
	StateLoot
)

func (s State) String() string {
	switch s {
	case StateCombat:
		return "COMBAT"
	case StateLoot:
		return "LOOT"
	default:
		return "EXPLORE"
	}
}

const (
	// stuckThreshold is how many consecutive no-progress combat turns are
	// tolerated before the target is abandoned.
	stuckThreshold = 8
	// combatNoopThreshold is the independent cap on explicit do-nothing
	// combat decisions; same remedy, distinct counter.
	combatNoopThreshold = 5

	recentPositionsLen = 6
	damageHistoryLen   = 3
)

// Brain drives one automated run. Construct once per run, discard when
// the run ends.
type Brain struct {
	log      *log.Logger
	persona  persona.Persona
	healCfg  persona.HealConfig
	explorer *explore.AutoExplore

	state         State
	currentTarget *game.Entity

	stuckCounter      int
	combatNoopCounter int
	// justDropped suppresses re-acquiring a target we abandoned for lack
	// of progress. Adjacency overrides it unconditionally.
	justDropped *game.Entity

	recentPositions *explore.PosRing
	damageHistory   []int

	lastPlayerPos game.Pos
	lastTargetPos game.Pos
	havePrevTick  bool
	lastHP        int

	stairsPath []game.Pos
}

func New(logger *log.Logger, rng *rand.Rand, reg *persona.Registry, personaName string) (*Brain, error) {
	p, err := reg.ByName(personaName)
	if err != nil {
		return nil, err
	}
	return &Brain{
		log:             logger,
		persona:         p,
		healCfg:         reg.HealConfigFor(personaName),
		explorer:        explore.NewAutoExplore(logger, rng),
		recentPositions: explore.NewPosRing(recentPositionsLen),
	}, nil
}

func (b *Brain) State() State                   { return b.state }
func (b *Brain) Persona() persona.Persona       { return b.persona }
func (b *Brain) Explorer() *explore.AutoExplore { return b.explorer }
func (b *Brain) CurrentTarget() *game.Entity    { return b.currentTarget }

// Decide returns exactly one intent action for this turn. It never
// returns nil; "do nothing" is the explicit no-op action.
func (b *Brain) Decide(m *game.Map, entities []*game.Entity, vis *game.Visibility, player *game.Entity) *protocol.Action {
	if player == nil || player.Fighter() == nil {
		if b.log != nil {
			b.log.Printf("ERROR decide called with no usable player")
		}
		return protocol.Noop()
	}

	b.trackDamage(player)
	b.recentPositions.Push(player.Pos())

	visible := visibleHostiles(entities, vis)
	adjacent := adjacentHostiles(visible, player)

	// 1. Adjacent hostile always forces combat, regardless of any
	// just-dropped suppression: a bot must never refuse to fight
	// something standing next to it. Panic drinking is the one exception:
	// when the persona's emergency rules fire, the turn goes to the
	// potion, not the attack.
	if len(adjacent) > 0 {
		target := b.pickAdjacentTarget(adjacent)
		b.enterCombat(target)
		b.stairsPath = nil
		b.resetProgressCounters()
		b.justDropped = nil
		if act := b.maybeDrink(player, visible, adjacent); act != nil {
			b.noteTick(player, target)
			return act
		}
		dx, dy := game.StepToward(player.Pos(), target.Pos())
		b.noteTick(player, target)
		return protocol.Move(dx, dy)
	}

	// 2. Loot underfoot. LootPriority 0 personas never stop for loot.
	if b.persona.LootPriority > 0 && lootableAt(entities, player.Pos()) {
		b.state = StateLoot
		b.noteTick(player, nil)
		return protocol.PickupAction()
	}

	// 3. Pursue a visible hostile.
	if act := b.combatPursuit(m, entities, visible, player); act != nil {
		return act
	}

	// 4. Drink when hurt (suppressed in sight of enemies unless the
	// persona heals under pressure).
	if act := b.maybeDrink(player, visible, adjacent); act != nil {
		b.noteTick(player, nil)
		return act
	}

	// 5. Floor finished: head for the stairs. A refused start ("Nothing
	// left to explore") means the same thing as a terminal stop; without
	// this the brain would re-issue start forever on a mapped-out floor.
	if sr := b.explorer.StopReason(); explore.IsTerminalReason(sr) || sr == explore.ReasonNothingLeft {
		b.state = StateExplore
		act := b.stairsSequencing(m, entities, player)
		b.noteTick(player, nil)
		return act
	}

	// 6. Explore.
	b.state = StateExplore
	b.noteTick(player, nil)
	if !b.explorer.IsActive() {
		return protocol.StartAutoExploreAction()
	}
	// AutoExplore owns the turn; the harness pulls movement from it.
	return protocol.Noop()
}

// combatPursuit handles the non-adjacent combat branch. Returns nil when
// there is nothing to fight (or the persona refuses), letting evaluation
// fall through.
func (b *Brain) combatPursuit(m *game.Map, entities []*game.Entity, visible []*game.Entity, player *game.Entity) *protocol.Action {
	if b.persona.AvoidCombat || len(visible) == 0 {
		return nil
	}

	target := b.selectTarget(visible, player)
	if target == nil {
		return nil
	}
	b.enterCombat(target)

	// Bot-level oscillation: abandon the target independently of the
	// stuck counter.
	if b.recentPositions.TwoTileOscillation() {
		b.dropTarget(target, "oscillation")
		return nil
	}

	path := explore.FindPath(b.log, m, excludeBoth(entities, player, target), player.Pos(), target.Pos())

	var act *protocol.Action
	if len(path) > 0 {
		dx := path[0].X - player.X
		dy := path[0].Y - player.Y
		act = protocol.Move(dx, dy)
		b.combatNoopCounter = 0
	} else {
		act = protocol.Noop()
		b.combatNoopCounter++
		if b.combatNoopCounter >= combatNoopThreshold {
			b.dropTarget(target, "combat no-op")
			return nil
		}
	}

	// Stuck detection: progress is any change in player position, target
	// position, or an attack action. Attacks only happen in the adjacency
	// branch, so here progress means movement.
	if b.havePrevTick && player.Pos() == b.lastPlayerPos && target.Pos() == b.lastTargetPos {
		b.stuckCounter++
		if b.stuckCounter >= stuckThreshold {
			b.dropTarget(target, "stuck")
			return nil
		}
	} else {
		b.stuckCounter = 0
	}

	b.noteTick(player, target)
	return act
}

// stairsSequencing walks the player to the nearest down staircase once
// the floor is exhausted, or aborts the run when the floor has none.
func (b *Brain) stairsSequencing(m *game.Map, entities []*game.Entity, player *game.Entity) *protocol.Action {
	var stairs *game.Entity
	bestDist := 0
	for _, e := range entities {
		if !e.Has(game.CompStairs) {
			continue
		}
		d := game.ChebyshevDist(player.Pos(), e.Pos())
		if stairs == nil || d < bestDist {
			stairs = e
			bestDist = d
		}
	}
	if stairs == nil {
		if b.log != nil {
			b.log.Printf("no stairs on fully explored floor; aborting run")
		}
		return protocol.AbortRun()
	}

	if player.Pos() == stairs.Pos() {
		b.stairsPath = nil
		return protocol.TakeStairsAction()
	}

	if len(b.stairsPath) == 0 {
		b.stairsPath = explore.FindPath(b.log, m, excludeBoth(entities, player, stairs), player.Pos(), stairs.Pos())
		if len(b.stairsPath) == 0 {
			if b.log != nil {
				b.log.Printf("stairs unreachable at (%d,%d); aborting run", stairs.X, stairs.Y)
			}
			return protocol.AbortRun()
		}
	}

	next := b.stairsPath[0]
	b.stairsPath = b.stairsPath[1:]
	dx := next.X - player.X
	dy := next.Y - player.Y
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		b.stairsPath = nil
		return protocol.Noop()
	}
	return protocol.Move(dx, dy)
}

// maybeDrink emits an inventory-use action when HP is at or below the
// persona threshold and a potion is available. The returned index is the
// item's position in the alphabetically-sorted listing, the same index
// any inventory UI would show.
func (b *Brain) maybeDrink(player *game.Entity, visible, adjacent []*game.Entity) *protocol.Action {
	f := player.Fighter()
	if f.MaxHP <= 0 {
		return nil
	}
	frac := float64(f.HP) / float64(f.MaxHP)

	threshold := b.healThreshold()
	if len(adjacent) >= b.healCfg.PanicEnemyCount && b.healCfg.PanicEnemyCount > 0 {
		// Under heavy pressure the emergency threshold applies instead.
		if threshold < b.healCfg.PanicHPThreshold {
			threshold = b.healCfg.PanicHPThreshold
		}
	}
	if frac > threshold {
		return nil
	}
	if len(visible) > 0 && !b.persona.DrinkPotionInCombat {
		return nil
	}

	inv := player.Inventory()
	if inv == nil {
		return nil
	}
	sorted := inv.SortedByDisplayName()

	// Prefer an identified healing potion; otherwise any non-wand
	// consumable.
	for i, e := range sorted {
		if it := e.Item(); it != nil && it.HealAmount > 0 {
			return protocol.UseInventory(i)
		}
	}
	for i, e := range sorted {
		if e.Has(game.CompWand) {
			continue
		}
		if it := e.Item(); it != nil && (it.Kind == game.ItemPotion || it.Kind == game.ItemScroll) {
			return protocol.UseInventory(i)
		}
	}
	return nil
}

// healThreshold returns the base potion threshold. The damage-history
// plumbing exists to support spike-adaptive thresholds, but the
// adjustment is disabled: the base value is returned unmodified.
func (b *Brain) healThreshold() float64 {
	return b.healCfg.PotionHPThreshold
}

// DamageHistory exposes the last few per-turn HP deltas, newest last.
func (b *Brain) DamageHistory() []int {
	out := make([]int, len(b.damageHistory))
	copy(out, b.damageHistory)
	return out
}

func (b *Brain) trackDamage(player *game.Entity) {
	hp := player.Fighter().HP
	if b.havePrevTick {
		b.damageHistory = append(b.damageHistory, b.lastHP-hp)
		if len(b.damageHistory) > damageHistoryLen {
			b.damageHistory = b.damageHistory[1:]
		}
	}
	b.lastHP = hp
}

func (b *Brain) enterCombat(target *game.Entity) {
	if b.currentTarget != target {
		b.currentTarget = target
		b.stuckCounter = 0
		b.combatNoopCounter = 0
	}
	b.state = StateCombat
}

func (b *Brain) dropTarget(target *game.Entity, why string) {
	if b.log != nil {
		b.log.Printf("dropping combat target %s (%s)", target.Name, why)
	}
	b.justDropped = target
	b.currentTarget = nil
	b.state = StateExplore
	b.stuckCounter = 0
	b.combatNoopCounter = 0
}

func (b *Brain) resetProgressCounters() {
	b.stuckCounter = 0
	b.combatNoopCounter = 0
}

func (b *Brain) noteTick(player *game.Entity, target *game.Entity) {
	b.lastPlayerPos = player.Pos()
	if target != nil {
		b.lastTargetPos = target.Pos()
	}
	b.havePrevTick = true
}

// pickAdjacentTarget keeps the current target when it is among the
// adjacent hostiles; otherwise the first in stable slice order wins.
func (b *Brain) pickAdjacentTarget(adjacent []*game.Entity) *game.Entity {
	for _, e := range adjacent {
		if e == b.currentTarget {
			return e
		}
	}
	return adjacent[0]
}

// selectTarget keeps a still-valid tracked target, else acquires the
// nearest visible hostile within engagement range, skipping one that was
// just dropped for lack of progress.
func (b *Brain) selectTarget(visible []*game.Entity, player *game.Entity) *game.Entity {
	if b.currentTarget != nil && b.currentTarget.Hostile() {
		for _, e := range visible {
			if e == b.currentTarget {
				return e
			}
		}
	}
	var best *game.Entity
	bestDist := 0
	for _, e := range visible {
		if e == b.justDropped {
			continue
		}
		d := game.ChebyshevDist(player.Pos(), e.Pos())
		if d > b.persona.EngageDistance {
			continue
		}
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

func visibleHostiles(entities []*game.Entity, vis *game.Visibility) []*game.Entity {
	var out []*game.Entity
	for _, e := range entities {
		if e.Hostile() && vis.IsInFOV(e.X, e.Y) {
			out = append(out, e)
		}
	}
	return out
}

func adjacentHostiles(visible []*game.Entity, player *game.Entity) []*game.Entity {
	var out []*game.Entity
	for _, e := range visible {
		if game.Adjacent(player.Pos(), e.Pos()) {
			out = append(out, e)
		}
	}
	return out
}

func lootableAt(entities []*game.Entity, p game.Pos) bool {
	for _, e := range entities {
		if e.Pos() != p {
			continue
		}
		if e.Has(game.CompItem) {
			return true
		}
		if ch := e.Chest(); ch != nil && !ch.Opened {
			return true
		}
	}
	return false
}

func excludeBoth(entities []*game.Entity, a, bEnt *game.Entity) []*game.Entity {
	out := make([]*game.Entity, 0, len(entities))
	for _, e := range entities {
		if e != a && e != bEnt {
			out = append(out, e)
		}
	}
	return out
}
