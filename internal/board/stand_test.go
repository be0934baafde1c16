package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestStandCounts(t *testing.T) {
	s := NewStand(map[PieceType]int{Pawn: 18, Lance: 4, Knight: 4, Silver: 4, Gold: 4, Bishop: 2, Rook: 2})
	for _, pt := range HandTypes {
		assert.Equal(t, StandMax[pt], s.Count(pt), pt.String())
	}
	assert.Equal(t, 38, s.Total())
	assert.Equal(t, "2R2B4G4S4N4L18P", s.String())

	for _, pt := range HandTypes {
		s = s.Decrement(pt)
	}
	assert.Equal(t, 17, s.Count(Pawn))
	assert.Equal(t, 1, s.Count(Rook))
	assert.Equal(t, 0, s.Count(King))
}

func TestStandPanics(t *testing.T) {
	full := NewStand(map[PieceType]int{Rook: 2})
	assert.Panics(t, func() { full.Increment(Rook) })
	assert.Panics(t, func() { Stand(0).Decrement(Pawn) })
	assert.Panics(t, func() { Stand(0).Increment(King) })
	assert.Panics(t, func() { Stand(0).Increment(ProPawn) })
}

func randomStand(rng *frand.RNG) (Stand, [NumPieceType]int) {
	var counts [NumPieceType]int
	var s Stand
	for _, pt := range HandTypes {
		n := rng.Intn(StandMax[pt] + 1)
		counts[pt] = n
		for i := 0; i < n; i++ {
			s = s.Increment(pt)
		}
	}
	return s, counts
}

func TestStandDominance(t *testing.T) {
	rng := frand.NewCustom(make([]byte, 32), 1024, 12)

	for i := 0; i < 20000; i++ {
		a, ac := randomStand(rng)
		b, bc := randomStand(rng)

		want := true
		for _, pt := range HandTypes {
			if ac[pt] < bc[pt] {
				want = false
			}
		}
		require.Equal(t, want, a.IsSuperiorOrEqual(b), "%v vs %v", a, b)
		require.True(t, a.IsSuperiorOrEqual(a))
	}

	// Dominance is per type, not by total.
	a := NewStand(map[PieceType]int{Pawn: 5})
	b := NewStand(map[PieceType]int{Rook: 1})
	assert.False(t, a.IsSuperiorOrEqual(b))
	assert.False(t, b.IsSuperiorOrEqual(a))
	assert.True(t, a.Increment(Rook).IsSuperiorOrEqual(b))
}
