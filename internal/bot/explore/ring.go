package explore

import "github.com/RafeHatfield/yarl-sub007/internal/game"

// PosRing is a fixed-capacity circular buffer of recent positions with
// explicit eviction. Oldest entries fall off once the buffer is full.
type PosRing struct {
	buf   []game.Pos
	head  int
	count int
}

func NewPosRing(capacity int) *PosRing {
	return &PosRing{buf: make([]game.Pos, capacity)}
}

func (r *PosRing) Push(p game.Pos) {
	r.buf[r.head] = p
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *PosRing) Len() int { return r.count }

// At returns the i-th entry, oldest first.
func (r *PosRing) At(i int) game.Pos {
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	return r.buf[(start+i)%len(r.buf)]
}

func (r *PosRing) Reset() {
	r.head = 0
	r.count = 0
}

// TwoTileOscillation reports an exact A,B,A,B,A,B pattern across a full
// buffer of six samples. Three-tile cycles and short histories never
// match: the check requires all six samples and exactly two distinct
// alternating positions.
func (r *PosRing) TwoTileOscillation() bool {
	if r.count < len(r.buf) || len(r.buf) < 6 {
		return false
	}
	a := r.At(0)
	b := r.At(1)
	if a == b {
		return false
	}
	for i := 2; i < r.count; i++ {
		want := a
		if i%2 == 1 {
			want = b
		}
		if r.At(i) != want {
			return false
		}
	}
	return true
}
