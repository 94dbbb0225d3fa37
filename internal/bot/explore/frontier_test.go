package explore_test

import (
	"testing"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/bottest"
	"github.com/RafeHatfield/yarl-sub007/internal/bot/explore"
	"github.com/RafeHatfield/yarl-sub007/internal/game"
)

func TestNearestUnexplored_PicksClosest(t *testing.T) {
	f := bottest.Parse(t,
		"#########",
		"#@..?..?#",
		"#########",
	)
	got, ok := explore.NearestUnexplored(f.Map, f.Start)
	if !ok {
		t.Fatal("expected a frontier tile")
	}
	if (got != game.Pos{X: 4, Y: 1}) {
		t.Fatalf("got %+v, want (4,1)", got)
	}
}

func TestNearestUnexplored_NoneLeft(t *testing.T) {
	f := bottest.Parse(t,
		"#####",
		"#@..#",
		"#####",
	)
	if _, ok := explore.NearestUnexplored(f.Map, f.Start); ok {
		t.Fatal("fully explored map should yield no target")
	}
}

func TestNearestUnexplored_HazardBlocksTraversal(t *testing.T) {
	// The only route to the frontier crosses a hazard tile. Hazards are
	// non-traversable for the search, so the frontier is unreachable.
	f := bottest.Parse(t,
		"#####",
		"#@~?#",
		"#####",
	)
	if _, ok := explore.NearestUnexplored(f.Map, f.Start); ok {
		t.Fatal("hazard should not be traversed to reach the frontier")
	}
}

func TestNearestUnexplored_HazardTileNotATarget(t *testing.T) {
	// An unexplored hazard tile is never a candidate itself.
	f := bottest.Parse(t,
		"#####",
		"#@..#",
		"#.#~#",
		"#####",
	)
	f.Map.Tile(3, 2).Explored = false
	if _, ok := explore.NearestUnexplored(f.Map, f.Start); ok {
		t.Fatal("hazard tile must not be returned as a frontier")
	}
}

func TestNearestUnexploredIn_StaysInsideBounds(t *testing.T) {
	// Frontier at (7,1) is outside the rectangle; the bounded search must
	// not find it even though the unbounded one would.
	f := bottest.Parse(t,
		"#########",
		"#@.....?#",
		"#########",
	)
	bounds := game.Rect{X1: 0, Y1: 0, X2: 4, Y2: 2}
	if _, ok := explore.NearestUnexploredIn(f.Map, f.Start, &bounds); ok {
		t.Fatal("bounded search escaped its rectangle")
	}
	if got, ok := explore.NearestUnexplored(f.Map, f.Start); !ok || (got != game.Pos{X: 7, Y: 1}) {
		t.Fatalf("unbounded search = %+v, %v", got, ok)
	}
}

func TestNearestUnexplored_OutOfBoundsStart(t *testing.T) {
	f := bottest.Parse(t,
		"###",
		"#@#",
		"###",
	)
	if _, ok := explore.NearestUnexplored(f.Map, game.Pos{X: -1, Y: 0}); ok {
		t.Fatal("out-of-bounds start must fail closed")
	}
}
