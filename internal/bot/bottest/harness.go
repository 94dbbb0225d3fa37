// Package bottest builds small fixture dungeons for black-box tests of
// the exploration and decision packages. Maps are drawn as ASCII so a
// test reads like the scenario it checks.
package bottest

import (
	"io"
	"log"
	"testing"

	"github.com/RafeHatfield/yarl-sub007/internal/game"
)

// Map legend:
//
//	#  wall
//	.  floor, already explored
//	?  floor, not yet explored
//	~  floor, explored, hazardous
//	@  player start (floor, explored)
//	>  stairs tile (floor, explored; the stairs entity is placed by the test)
//	r  rat marker (floor, explored; the monster entity is placed by the test)
//	o  orc marker (floor, explored; the monster entity is placed by the test)
type Fixture struct {
	Map   *game.Map
	Start game.Pos

	nextID int
}

// Parse builds a map from ASCII rows. Rows must be equal length and
// contain exactly one '@'.
func Parse(t *testing.T, rows ...string) *Fixture {
	t.Helper()
	if len(rows) == 0 {
		t.Fatal("empty fixture")
	}
	w := len(rows[0])
	m := game.NewMap(w, len(rows))
	f := &Fixture{Map: m, Start: game.Pos{X: -1, Y: -1}, nextID: 1}

	for y, row := range rows {
		if len(row) != w {
			t.Fatalf("row %d: width %d, want %d", y, len(row), w)
		}
		for x, c := range row {
			tile := m.Tile(x, y)
			switch c {
			case '#':
				// walls are the NewMap default
			case '.', '>', 'r', 'o':
				tile.Blocked = false
				tile.BlockSight = false
				tile.Explored = true
			case '?':
				tile.Blocked = false
				tile.BlockSight = false
			case '~':
				tile.Blocked = false
				tile.BlockSight = false
				tile.Explored = true
				m.SetHazard(x, y)
			case '@':
				tile.Blocked = false
				tile.BlockSight = false
				tile.Explored = true
				if f.Start.X >= 0 {
					t.Fatalf("second '@' at (%d,%d)", x, y)
				}
				f.Start = game.Pos{X: x, Y: y}
			default:
				t.Fatalf("unknown map rune %q at (%d,%d)", c, x, y)
			}
		}
	}
	if f.Start.X < 0 {
		t.Fatal("fixture has no '@'")
	}
	return f
}

func (f *Fixture) allocID() int {
	id := f.nextID
	f.nextID++
	return id
}

// Player builds a standard test player at the fixture start.
func (f *Fixture) Player() *game.Entity {
	p := game.NewEntity(f.allocID(), "player", f.Start.X, f.Start.Y, true)
	p.Attach(game.CompFighter, &game.Fighter{HP: 30, MaxHP: 30, Power: 4, Defense: 1})
	p.Attach(game.CompInventory, &game.Inventory{})
	p.Attach(game.CompStatusEffects, &game.StatusEffects{})
	return p
}

func (f *Fixture) Monster(name string, x, y, hp int) *game.Entity {
	m := game.NewEntity(f.allocID(), name, x, y, true)
	m.Attach(game.CompAI, &game.AI{SightRange: 8})
	m.Attach(game.CompFighter, &game.Fighter{HP: hp, MaxHP: hp, Power: 3, Defense: 0})
	return m
}

func (f *Fixture) Potion(name string, x, y, heal int) *game.Entity {
	p := game.NewEntity(f.allocID(), name, x, y, false)
	p.Attach(game.CompItem, &game.Item{Kind: game.ItemPotion, HealAmount: heal})
	return p
}

func (f *Fixture) Scroll(name string, x, y int) *game.Entity {
	s := game.NewEntity(f.allocID(), name, x, y, false)
	s.Attach(game.CompItem, &game.Item{Kind: game.ItemScroll})
	return s
}

func (f *Fixture) Equipment(name string, x, y int) *game.Entity {
	e := game.NewEntity(f.allocID(), name, x, y, false)
	e.Attach(game.CompEquippable, &game.Equippable{})
	return e
}

func (f *Fixture) Stairs(x, y int) *game.Entity {
	s := game.NewEntity(f.allocID(), "stairs down", x, y, false)
	s.Attach(game.CompStairs, &game.Stairs{})
	return s
}

func (f *Fixture) Chest(x, y int) *game.Entity {
	c := game.NewEntity(f.allocID(), "ornate chest", x, y, false)
	c.Attach(game.CompChest, &game.Chest{})
	return c
}

func (f *Fixture) Signpost(x, y int, text string) *game.Entity {
	s := game.NewEntity(f.allocID(), "weathered signpost", x, y, false)
	s.Attach(game.CompSignpost, &game.Signpost{Text: text})
	return s
}

// FOV computes visibility from the entity's position with the game's
// standard radius. This marks visible tiles explored, exactly as a real
// turn would.
func FOV(m *game.Map, from *game.Entity) *game.Visibility {
	return game.ComputeFOV(m, from.Pos(), 8)
}

// Quiet returns a logger for code paths under test that demand one.
func Quiet() *log.Logger { return log.New(io.Discard, "", 0) }
