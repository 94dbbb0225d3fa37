package game

import (
	"sort"
	"strings"
)

// Entity is anything placed on the map: the player, monsters, loot,
// furniture. Capabilities live in a closed component registry; callers
// test membership with Has and fetch typed instances with the Get helpers.
type Entity struct {
	ID     int
	Name   string
	X, Y   int
	Blocks bool

	components map[ComponentKind]any
}

func NewEntity(id int, name string, x, y int, blocks bool) *Entity {
	return &Entity{
		ID:         id,
		Name:       name,
		X:          x,
		Y:          y,
		Blocks:     blocks,
		components: make(map[ComponentKind]any, 4),
	}
}

func (e *Entity) Pos() Pos { return Pos{X: e.X, Y: e.Y} }

func (e *Entity) Attach(kind ComponentKind, c any) *Entity {
	e.components[kind] = c
	return e
}

func (e *Entity) Has(kind ComponentKind) bool {
	_, ok := e.components[kind]
	return ok
}

func (e *Entity) Fighter() *Fighter {
	c, _ := e.components[CompFighter].(*Fighter)
	return c
}

func (e *Entity) AI() *AI {
	c, _ := e.components[CompAI].(*AI)
	return c
}

func (e *Entity) Item() *Item {
	c, _ := e.components[CompItem].(*Item)
	return c
}

func (e *Entity) Chest() *Chest {
	c, _ := e.components[CompChest].(*Chest)
	return c
}

func (e *Entity) Signpost() *Signpost {
	c, _ := e.components[CompSignpost].(*Signpost)
	return c
}

func (e *Entity) StatusEffects() *StatusEffects {
	c, _ := e.components[CompStatusEffects].(*StatusEffects)
	return c
}

func (e *Entity) Inventory() *Inventory {
	c, _ := e.components[CompInventory].(*Inventory)
	return c
}

// DisplayName is what any inventory listing shows. Positional inventory
// indices are only meaningful against the listing sorted by this name.
func (e *Entity) DisplayName() string { return e.Name }

// Hostile reports whether the entity is a live monster.
func (e *Entity) Hostile() bool {
	if !e.Has(CompAI) {
		return false
	}
	f := e.Fighter()
	return f != nil && f.HP > 0
}

// Lootable reports whether the entity is worth stopping for: equipment,
// a usable consumable, or a wand.
func (e *Entity) Lootable() bool {
	if e.Has(CompEquippable) || e.Has(CompWand) {
		return true
	}
	if it := e.Item(); it != nil {
		return it.Kind == ItemPotion || it.Kind == ItemScroll
	}
	return false
}

// SortedByDisplayName returns inventory items in the order a UI lists
// them: alphabetical, case-insensitive, storage order as tiebreak.
func (inv *Inventory) SortedByDisplayName() []*Entity {
	out := make([]*Entity, len(inv.Items))
	copy(out, inv.Items)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	})
	return out
}

// BlockerAt returns the blocking entity standing on (x,y), if any.
// Iterates in slice order; entity slices are kept in stable order so
// results are deterministic.
func BlockerAt(entities []*Entity, x, y int) *Entity {
	for _, e := range entities {
		if e.Blocks && e.X == x && e.Y == y {
			return e
		}
	}
	return nil
}
