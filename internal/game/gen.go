package game

import (
	"fmt"
	"math/rand"
)

// GenConfig drives procedural generation for one floor.
type GenConfig struct {
	Width, Height int
	MaxRooms      int
	RoomMin       int
	RoomMax       int

	MonsterBudget int
	ItemCount     int
	HazardPatches int

	// VaultChance is a percent chance (0-100) that one room becomes a
	// gold-vein treasure vault.
	VaultChance int
	// SecretDoorChance is a percent chance per corridor that its midpoint
	// gets a secret-door marker.
	SecretDoorChance int
}

// DefaultGenConfig returns tuning that produces a small, well-connected
// floor. Values scale mildly with depth.
func DefaultGenConfig(depth int) GenConfig {
	return GenConfig{
		Width:            60,
		Height:           40,
		MaxRooms:         12,
		RoomMin:          4,
		RoomMax:          9,
		MonsterBudget:    4 + depth,
		ItemCount:        3,
		HazardPatches:    2,
		VaultChance:      20,
		SecretDoorChance: 15,
	}
}

// Generator produces floors deterministically from its rng. Entity IDs are
// allocated from a single counter so replays assign identical IDs.
type Generator struct {
	rng    *rand.Rand
	nextID int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), nextID: 1}
}

func (g *Generator) allocID() int {
	id := g.nextID
	g.nextID++
	return id
}

// Floor is one generated dungeon level.
type Floor struct {
	Depth    int
	Map      *Map
	Entities []*Entity
	Start    Pos
	Stairs   Pos
}

// Generate carves rooms and L-corridors, then populates monsters, loot,
// chests, signposts, hazards and the down staircase.
func (g *Generator) Generate(depth int, cfg GenConfig) *Floor {
	m := NewMap(cfg.Width, cfg.Height)
	f := &Floor{Depth: depth, Map: m}

	for i := 0; i < cfg.MaxRooms; i++ {
		w := cfg.RoomMin + g.rng.Intn(cfg.RoomMax-cfg.RoomMin+1)
		h := cfg.RoomMin + g.rng.Intn(cfg.RoomMax-cfg.RoomMin+1)
		x := 1 + g.rng.Intn(cfg.Width-w-2)
		y := 1 + g.rng.Intn(cfg.Height-h-2)
		room := Rect{X1: x, Y1: y, X2: x + w - 1, Y2: y + h - 1}

		overlaps := false
		for _, other := range m.Rooms {
			pad := Rect{X1: other.X1 - 1, Y1: other.Y1 - 1, X2: other.X2 + 1, Y2: other.Y2 + 1}
			if room.Intersects(pad) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		m.carveRoom(room)
		if len(m.Rooms) > 0 {
			prev := m.Rooms[len(m.Rooms)-1].Center()
			g.carveCorridor(m, prev, room.Center(), cfg)
		}
		m.Rooms = append(m.Rooms, room)
	}

	if len(m.Rooms) == 0 {
		// Degenerate roll; guarantee at least one room.
		room := Rect{X1: 1, Y1: 1, X2: cfg.RoomMin, Y2: cfg.RoomMin}
		m.carveRoom(room)
		m.Rooms = append(m.Rooms, room)
	}

	f.Start = m.Rooms[0].Center()
	f.Stairs = m.Rooms[len(m.Rooms)-1].Center()

	stairs := NewEntity(g.allocID(), "stairs down", f.Stairs.X, f.Stairs.Y, false)
	stairs.Attach(CompStairs, &Stairs{Depth: depth + 1})
	f.Entities = append(f.Entities, stairs)

	if cfg.VaultChance > 0 && len(m.Rooms) > 2 && g.rng.Intn(100) < cfg.VaultChance {
		g.makeVault(f, m.Rooms[1+g.rng.Intn(len(m.Rooms)-2)])
	}

	g.placeMonsters(f, cfg)
	g.placeLoot(f, cfg)
	g.placeHazards(f, cfg)

	return f
}

func (g *Generator) carveCorridor(m *Map, a, b Pos, cfg GenConfig) {
	// L-shaped: horizontal leg then vertical, or the reverse.
	corner := Pos{X: b.X, Y: a.Y}
	if g.rng.Intn(2) == 0 {
		corner = Pos{X: a.X, Y: b.Y}
	}
	carveLine := func(from, to Pos) {
		x, y := from.X, from.Y
		for x != to.X || y != to.Y {
			m.carve(x, y)
			if x != to.X {
				if to.X > x {
					x++
				} else {
					x--
				}
			} else if y != to.Y {
				if to.Y > y {
					y++
				} else {
					y--
				}
			}
		}
		m.carve(to.X, to.Y)
	}
	carveLine(a, corner)
	carveLine(corner, b)

	if cfg.SecretDoorChance > 0 && g.rng.Intn(100) < cfg.SecretDoorChance {
		if t := m.Tile(corner.X, corner.Y); t != nil {
			t.SecretDoor = true
		}
	}
}

// makeVault rings a room's walls with gold veins and drops bonus loot at
// its center.
func (g *Generator) makeVault(f *Floor, room Rect) {
	m := f.Map
	for x := room.X1 - 1; x <= room.X2+1; x++ {
		for _, y := range []int{room.Y1 - 1, room.Y2 + 1} {
			if t := m.Tile(x, y); t != nil && t.Blocked {
				t.GoldVein = true
			}
		}
	}
	for y := room.Y1 - 1; y <= room.Y2+1; y++ {
		for _, x := range []int{room.X1 - 1, room.X2 + 1} {
			if t := m.Tile(x, y); t != nil && t.Blocked {
				t.GoldVein = true
			}
		}
	}
	c := room.Center()
	chest := NewEntity(g.allocID(), "ornate chest", c.X, c.Y, false)
	chest.Attach(CompChest, &Chest{})
	f.Entities = append(f.Entities, chest)
}

type monsterSpec struct {
	name       string
	cost       int
	hp         int
	power      int
	sightRange int
}

var monsterTable = []monsterSpec{
	{name: "rat", cost: 1, hp: 4, power: 1, sightRange: 6},
	{name: "goblin", cost: 2, hp: 8, power: 2, sightRange: 7},
	{name: "orc", cost: 3, hp: 14, power: 3, sightRange: 7},
	{name: "troll", cost: 5, hp: 24, power: 5, sightRange: 6},
}

func (g *Generator) placeMonsters(f *Floor, cfg GenConfig) {
	budget := cfg.MonsterBudget
	guard := 0
	for budget > 0 && guard < 200 {
		guard++
		spec := monsterTable[g.rng.Intn(len(monsterTable))]
		if spec.cost > budget {
			continue
		}
		p, ok := g.randomFloorTile(f, true)
		if !ok {
			break
		}
		mo := NewEntity(g.allocID(), spec.name, p.X, p.Y, true)
		mo.Attach(CompAI, &AI{SightRange: spec.sightRange})
		mo.Attach(CompFighter, &Fighter{HP: spec.hp, MaxHP: spec.hp, Power: spec.power})
		f.Entities = append(f.Entities, mo)
		budget -= spec.cost
	}
}

func (g *Generator) placeLoot(f *Floor, cfg GenConfig) {
	for i := 0; i < cfg.ItemCount; i++ {
		p, ok := g.randomFloorTile(f, false)
		if !ok {
			return
		}
		var e *Entity
		switch g.rng.Intn(4) {
		case 0:
			e = NewEntity(g.allocID(), "healing potion", p.X, p.Y, false)
			e.Attach(CompItem, &Item{Kind: ItemPotion, HealAmount: 10})
		case 1:
			e = NewEntity(g.allocID(), fmt.Sprintf("scroll of warding %d", i+1), p.X, p.Y, false)
			e.Attach(CompItem, &Item{Kind: ItemScroll})
		case 2:
			e = NewEntity(g.allocID(), "iron sword", p.X, p.Y, false)
			e.Attach(CompItem, &Item{Kind: ItemMisc})
			e.Attach(CompEquippable, &Equippable{PowerBonus: 2})
		default:
			e = NewEntity(g.allocID(), "wand of sparks", p.X, p.Y, false)
			e.Attach(CompItem, &Item{Kind: ItemMisc})
			e.Attach(CompWand, &Wand{Charges: 3})
		}
		f.Entities = append(f.Entities, e)
	}

	// One signpost per floor adds a point of interest for exploration stops.
	if p, ok := g.randomFloorTile(f, false); ok {
		sp := NewEntity(g.allocID(), "weathered signpost", p.X, p.Y, false)
		sp.Attach(CompSignpost, &Signpost{Text: fmt.Sprintf("Depth %d. Turn back.", f.Depth)})
		f.Entities = append(f.Entities, sp)
	}
}

func (g *Generator) placeHazards(f *Floor, cfg GenConfig) {
	for i := 0; i < cfg.HazardPatches; i++ {
		p, ok := g.randomFloorTile(f, false)
		if !ok {
			return
		}
		// The stairs tile must stay steppable or a finished floor can
		// never be left.
		if p == f.Stairs {
			continue
		}
		f.Map.SetHazard(p.X, p.Y)
	}
}

// randomFloorTile picks a walkable tile, keeping clear of the start tile.
// avoidStartRoom additionally rejects the whole first room so freshly
// spawned monsters are not adjacent on turn one.
func (g *Generator) randomFloorTile(f *Floor, avoidStartRoom bool) (Pos, bool) {
	m := f.Map
	for tries := 0; tries < 100; tries++ {
		room := m.Rooms[g.rng.Intn(len(m.Rooms))]
		if avoidStartRoom && room == m.Rooms[0] {
			continue
		}
		x := room.X1 + g.rng.Intn(room.X2-room.X1+1)
		y := room.Y1 + g.rng.Intn(room.Y2-room.Y1+1)
		p := Pos{X: x, Y: y}
		if p == f.Start || !m.Walkable(x, y) || m.HazardAt(x, y) {
			continue
		}
		if BlockerAt(f.Entities, x, y) != nil {
			continue
		}
		return p, true
	}
	return Pos{}, false
}
