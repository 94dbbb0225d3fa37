package explore

import (
	"testing"

	"github.com/RafeHatfield/yarl-sub007/internal/game"
)

func TestPosRing_OrderAndEviction(t *testing.T) {
	r := NewPosRing(3)
	for i := 0; i < 5; i++ {
		r.Push(game.Pos{X: i})
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}
	for i, want := range []int{2, 3, 4} {
		if got := r.At(i); got.X != want {
			t.Fatalf("At(%d) = %d, want %d", i, got.X, want)
		}
	}

	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("len after reset = %d", r.Len())
	}
}

func TestTwoTileOscillation_Detects(t *testing.T) {
	a := game.Pos{X: 3, Y: 4}
	b := game.Pos{X: 4, Y: 4}

	r := NewPosRing(6)
	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			r.Push(a)
		} else {
			r.Push(b)
		}
	}
	if !r.TwoTileOscillation() {
		t.Fatal("A,B,A,B,A,B should be flagged")
	}
}

func TestTwoTileOscillation_NegativeCases(t *testing.T) {
	a := game.Pos{X: 1}
	b := game.Pos{X: 2}
	c := game.Pos{X: 3}

	// Partial history never matches, even if alternating so far.
	r := NewPosRing(6)
	r.Push(a)
	r.Push(b)
	r.Push(a)
	r.Push(b)
	if r.TwoTileOscillation() {
		t.Fatal("four samples must not be flagged")
	}

	// Three-tile cycle is legitimate movement.
	r = NewPosRing(6)
	for i := 0; i < 6; i++ {
		r.Push([]game.Pos{a, b, c}[i%3])
	}
	if r.TwoTileOscillation() {
		t.Fatal("A,B,C cycle must not be flagged")
	}

	// Standing still is not an oscillation.
	r = NewPosRing(6)
	for i := 0; i < 6; i++ {
		r.Push(a)
	}
	if r.TwoTileOscillation() {
		t.Fatal("stationary history must not be flagged")
	}

	// One deviation breaks the pattern.
	r = NewPosRing(6)
	r.Push(a)
	r.Push(b)
	r.Push(a)
	r.Push(b)
	r.Push(c)
	r.Push(b)
	if r.TwoTileOscillation() {
		t.Fatal("broken alternation must not be flagged")
	}
}
