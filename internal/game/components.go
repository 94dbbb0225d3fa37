package game

// ComponentKind is the closed set of capabilities an entity may carry.
// Lookups go through the entity's component map, never through type probing.
type ComponentKind int

const (
	CompAI ComponentKind = iota + 1
	CompFighter
	CompItem
	CompEquippable
	CompWand
	CompChest
	CompSignpost
	CompStairs
	CompStatusEffects
	CompInventory
)

// AI marks an entity as a monster and selects its per-turn behavior.
type AI struct {
	SightRange int
}

// Fighter holds combat state. HP <= 0 means the entity is out of the fight.
type Fighter struct {
	HP      int
	MaxHP   int
	Power   int
	Defense int
}

func (f *Fighter) TakeDamage(amount int) {
	if amount < 0 {
		amount = 0
	}
	f.HP -= amount
	if f.HP < 0 {
		f.HP = 0
	}
}

func (f *Fighter) Heal(amount int) {
	if amount < 0 {
		return
	}
	f.HP += amount
	if f.HP > f.MaxHP {
		f.HP = f.MaxHP
	}
}

// ItemKind distinguishes usable consumables from everything else.
type ItemKind int

const (
	ItemMisc ItemKind = iota
	ItemPotion
	ItemScroll
)

type Item struct {
	Kind ItemKind
	// HealAmount > 0 identifies a healing potion.
	HealAmount int
}

type Equippable struct {
	PowerBonus   int
	DefenseBonus int
}

type Wand struct {
	Charges int
}

type Chest struct {
	Opened bool
}

type Signpost struct {
	Text string
	Read bool
}

// Stairs leads down; the engine generates the next floor when taken.
type Stairs struct {
	Depth int
}

// StatusEffects carries remaining-turn counters for negative conditions.
type StatusEffects struct {
	Poisoned int
	Confused int
	Slowed   int
	Blinded  int
	Stuck    int
}

// ActiveNegative returns the display name of the first active negative
// effect, checked in a fixed order, or "" when clean.
func (s *StatusEffects) ActiveNegative() string {
	switch {
	case s == nil:
		return ""
	case s.Poisoned > 0:
		return "Poison"
	case s.Confused > 0:
		return "Confusion"
	case s.Slowed > 0:
		return "Slow"
	case s.Blinded > 0:
		return "Blindness"
	case s.Stuck > 0:
		return "Stuck"
	}
	return ""
}

// Inventory is an ordered bag. Storage order is insertion order; UI-facing
// indices must go through SortedByDisplayName.
type Inventory struct {
	Items []*Entity
}
