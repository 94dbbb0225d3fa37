package game

import "testing"

func TestComputeFOV_RadiusAndExploration(t *testing.T) {
	m := NewMap(30, 30)
	m.carveRoom(Rect{X1: 1, Y1: 1, X2: 28, Y2: 28})

	origin := Pos{X: 15, Y: 15}
	vis := ComputeFOV(m, origin, 4)

	if !vis.IsInFOV(15, 15) {
		t.Fatal("origin must be visible")
	}
	if !vis.IsInFOV(19, 15) {
		t.Fatal("tile at exactly radius distance should be visible")
	}
	if vis.IsInFOV(20, 15) {
		t.Fatal("tile beyond radius should not be visible")
	}
	if vis.IsInFOV(19, 19) {
		t.Fatal("corner outside the circle should not be visible")
	}

	if !m.IsExplored(19, 15) {
		t.Fatal("visible tiles must be marked explored")
	}
	if m.IsExplored(25, 15) {
		t.Fatal("tiles never seen must stay unexplored")
	}
}

func TestComputeFOV_WallsBlockSight(t *testing.T) {
	m := NewMap(20, 5)
	m.carveRoom(Rect{X1: 1, Y1: 1, X2: 18, Y2: 3})

	// Re-seal a wall column between the viewer and the far side.
	for y := 0; y < 5; y++ {
		tile := m.Tile(8, y)
		tile.Blocked = true
		tile.BlockSight = true
	}

	vis := ComputeFOV(m, Pos{X: 5, Y: 2}, 8)
	if !vis.IsInFOV(7, 2) {
		t.Fatal("floor before the wall should be visible")
	}
	if !vis.IsInFOV(8, 2) {
		t.Fatal("the blocking wall itself should be visible")
	}
	if vis.IsInFOV(9, 2) {
		t.Fatal("nothing behind the wall should be visible")
	}
}

func TestComputeFOV_OutOfBoundsOrigin(t *testing.T) {
	m := NewMap(5, 5)
	vis := ComputeFOV(m, Pos{X: -1, Y: 2}, 4)
	if vis.IsInFOV(1, 2) {
		t.Fatal("degenerate origin must yield an empty snapshot")
	}
}

func TestNewVisibility(t *testing.T) {
	vis := NewVisibility(Pos{X: 1, Y: 2}, Pos{X: 3, Y: 4})
	if !vis.IsInFOV(1, 2) || !vis.IsInFOV(3, 4) {
		t.Fatal("listed positions must be visible")
	}
	if vis.IsInFOV(0, 0) {
		t.Fatal("unlisted position must not be visible")
	}
	var nilVis *Visibility
	if nilVis.IsInFOV(1, 1) {
		t.Fatal("nil visibility sees nothing")
	}
}
