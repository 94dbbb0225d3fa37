package explore_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/bottest"
	"github.com/RafeHatfield/yarl-sub007/internal/bot/explore"
	"github.com/RafeHatfield/yarl-sub007/internal/game"
)

func TestFindPath_StraightLine(t *testing.T) {
	f := bottest.Parse(t,
		"######",
		"#@...#",
		"######",
	)
	path := explore.FindPath(bottest.Quiet(), f.Map, nil, f.Start, game.Pos{X: 4, Y: 1})
	want := []game.Pos{{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path[%d] = %+v, want %+v", i, path[i], want[i])
		}
	}
}

func TestFindPath_PrefersDiagonalWhenCheaper(t *testing.T) {
	// (1,1) to (3,3): two diagonals cost 30, the cardinal route costs 40.
	f := bottest.Parse(t,
		"#####",
		"#@..#",
		"#...#",
		"#...#",
		"#####",
	)
	path := explore.FindPath(bottest.Quiet(), f.Map, nil, f.Start, game.Pos{X: 3, Y: 3})
	if len(path) != 2 {
		t.Fatalf("path = %v, want 2 diagonal steps", path)
	}
}

func TestFindPath_AvoidsHazards(t *testing.T) {
	f := bottest.Parse(t,
		"#####",
		"#@~.#",
		"#...#",
		"#####",
	)
	path := explore.FindPath(bottest.Quiet(), f.Map, nil, f.Start, game.Pos{X: 3, Y: 1})
	if len(path) == 0 {
		t.Fatal("expected a route around the hazard")
	}
	for _, p := range path {
		if f.Map.HazardAt(p.X, p.Y) {
			t.Fatalf("path crosses hazard at %+v", p)
		}
	}
}

func TestFindPath_HazardTargetUnreachable(t *testing.T) {
	// The occupancy waiver does not extend to hazards: a hazardous
	// destination has no route at all.
	f := bottest.Parse(t,
		"#####",
		"#@.~#",
		"#####",
	)
	if path := explore.FindPath(bottest.Quiet(), f.Map, nil, f.Start, game.Pos{X: 3, Y: 1}); len(path) != 0 {
		t.Fatalf("expected no path onto a hazard target, got %v", path)
	}
}

func TestFindPath_BlockingEntityAndTargetException(t *testing.T) {
	f := bottest.Parse(t,
		"#####",
		"#@..#",
		"#####",
	)
	rat := f.Monster("rat", 2, 1, 5)

	// Intermediate tile occupied: no route in a 1-wide corridor.
	if path := explore.FindPath(bottest.Quiet(), f.Map, []*game.Entity{rat}, f.Start, game.Pos{X: 3, Y: 1}); len(path) != 0 {
		t.Fatalf("expected no path through occupied corridor, got %v", path)
	}

	// The occupied tile itself stays a legal destination.
	path := explore.FindPath(bottest.Quiet(), f.Map, []*game.Entity{rat}, f.Start, game.Pos{X: 2, Y: 1})
	if len(path) != 1 || (path[0] != game.Pos{X: 2, Y: 1}) {
		t.Fatalf("path to occupied target = %v", path)
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	f := bottest.Parse(t,
		"#####",
		"#@#.#",
		"#####",
	)
	if path := explore.FindPath(bottest.Quiet(), f.Map, nil, f.Start, game.Pos{X: 3, Y: 1}); len(path) != 0 {
		t.Fatalf("expected no path, got %v", path)
	}
}

func TestFindPath_DegenerateInputs(t *testing.T) {
	f := bottest.Parse(t,
		"####",
		"#@.#",
		"####",
	)

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	if path := explore.FindPath(logger, f.Map, nil, game.Pos{X: -3, Y: 0}, game.Pos{X: 2, Y: 1}); path != nil {
		t.Fatalf("out-of-bounds start returned %v", path)
	}
	if !strings.Contains(buf.String(), "ERROR pathfinding from out-of-bounds start") {
		t.Fatalf("missing error log, got %q", buf.String())
	}

	if path := explore.FindPath(logger, f.Map, nil, f.Start, game.Pos{X: 99, Y: 1}); path != nil {
		t.Fatalf("out-of-bounds target returned %v", path)
	}
	if path := explore.FindPath(logger, f.Map, nil, f.Start, f.Start); path != nil {
		t.Fatalf("start==target returned %v", path)
	}
}
