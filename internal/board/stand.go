package board

import (
	"fmt"
	"strings"
)

// Stand packs the captured pieces one player holds. Each hand type owns a
// fixed-width lane with one spare guard bit above it:
//
//	pawn   bits 0-4   (guard 5)
//	lance  bits 6-8   (guard 9)
//	knight bits 10-12 (guard 13)
//	silver bits 14-16 (guard 17)
//	gold   bits 18-20 (guard 21)
//	bishop bits 22-23 (guard 24)
//	rook   bits 25-26 (guard 27)
type Stand uint32

var standShift = [NumPieceType]uint{
	Pawn:   0,
	Lance:  6,
	Knight: 10,
	Silver: 14,
	Gold:   18,
	Bishop: 22,
	Rook:   25,
}

var standWidthMask = [NumPieceType]Stand{
	Pawn:   0x1F,
	Lance:  0x7,
	Knight: 0x7,
	Silver: 0x7,
	Gold:   0x7,
	Bishop: 0x3,
	Rook:   0x3,
}

// StandMax is the number of pieces of each hand type in a full set.
var StandMax = [NumPieceType]int{
	Pawn:   18,
	Lance:  4,
	Knight: 4,
	Silver: 4,
	Gold:   4,
	Bishop: 2,
	Rook:   2,
}

const standGuardMask Stand = 1<<5 | 1<<9 | 1<<13 | 1<<17 | 1<<21 | 1<<24 | 1<<27

func isHandType(pt PieceType) bool {
	return pt >= Pawn && pt <= Gold
}

// NewStand builds a stand from per-type counts. Unknown types are ignored.
func NewStand(counts map[PieceType]int) Stand {
	var s Stand
	for pt, n := range counts {
		for i := 0; i < n; i++ {
			s = s.Increment(pt)
		}
	}
	return s
}

// Count returns how many pieces of type pt the stand holds.
func (s Stand) Count(pt PieceType) int {
	if !isHandType(pt) {
		return 0
	}
	return int((s >> standShift[pt]) & standWidthMask[pt])
}

// Increment adds one piece of type pt. It panics if pt cannot be held or the
// lane is already full.
func (s Stand) Increment(pt PieceType) Stand {
	if !isHandType(pt) {
		panic(fmt.Sprintf("board: %v cannot be held in a stand", pt))
	}
	if s.Count(pt) >= StandMax[pt] {
		panic(fmt.Sprintf("board: stand overflow for %v", pt))
	}
	return s + 1<<standShift[pt]
}

// Decrement removes one piece of type pt. It panics if the lane is empty.
func (s Stand) Decrement(pt PieceType) Stand {
	if s.Count(pt) == 0 {
		panic(fmt.Sprintf("board: stand underflow for %v", pt))
	}
	return s - 1<<standShift[pt]
}

// IsSuperiorOrEqual reports whether s holds at least as many pieces of every
// type as o. A lane that is short borrows into its guard bit.
func (s Stand) IsSuperiorOrEqual(o Stand) bool {
	return (s-o)&standGuardMask == 0
}

// IsEmpty returns true if the stand holds nothing.
func (s Stand) IsEmpty() bool {
	return s == 0
}

// Total returns the number of pieces held.
func (s Stand) Total() int {
	n := 0
	for _, pt := range HandTypes {
		n += s.Count(pt)
	}
	return n
}

// sfen appends the SFEN stand text, upper-case for Black.
func (s Stand) sfen(sb *strings.Builder, c Color) {
	for _, pt := range HandTypes {
		n := s.Count(pt)
		if n == 0 {
			continue
		}
		if n > 1 {
			fmt.Fprintf(sb, "%d", n)
		}
		sb.WriteString(NewPiece(c, pt).String())
	}
}

// String returns the stand in SFEN order with Black's letters, "-" if empty.
func (s Stand) String() string {
	if s.IsEmpty() {
		return "-"
	}
	var sb strings.Builder
	s.sfen(&sb, Black)
	return sb.String()
}
