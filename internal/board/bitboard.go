package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of board squares held in two 64-bit lanes.
// The low lane holds squares 0-62 (files 1-7), the high lane squares 63-80
// (files 8-9). Bits outside the board are always zero.
type Bitboard struct {
	lo uint64
	hi uint64
}

const (
	loMask uint64 = 0x7FFFFFFFFFFFFFFF // 63 bits
	hiMask uint64 = 0x000000000003FFFF // 18 bits

	loSquares = 63
)

// Special masks
var (
	EmptyBB = Bitboard{}
	AllBB   = Bitboard{lo: loMask, hi: hiMask}
)

var (
	squareBB [NumSquares + 1]Bitboard // NoSquare maps to the empty set
	fileBB   [9]Bitboard
	rankBB   [9]Bitboard
)

func init() {
	for sq := Square(0); sq < NoSquare; sq++ {
		if sq < loSquares {
			squareBB[sq] = Bitboard{lo: 1 << sq}
		} else {
			squareBB[sq] = Bitboard{hi: 1 << (sq - loSquares)}
		}
		fileBB[sq.File()] = fileBB[sq.File()].Or(squareBB[sq])
		rankBB[sq.Rank()] = rankBB[sq.Rank()].Or(squareBB[sq])
	}
}

// NewBitboard builds a bitboard from raw lanes, dropping off-board bits.
func NewBitboard(lo, hi uint64) Bitboard {
	return Bitboard{lo: lo & loMask, hi: hi & hiMask}
}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return squareBB[sq]
}

// FileBB returns the mask of a file (0-8).
func FileBB(file int) Bitboard {
	return fileBB[file]
}

// RankBB returns the mask of a rank (0-8, 0 = rank i).
func RankBB(rank int) Bitboard {
	return rankBB[rank]
}

// Lanes returns the raw low and high lanes.
func (b Bitboard) Lanes() (lo, hi uint64) {
	return b.lo, b.hi
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b.Or(squareBB[sq])
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b.AndNot(squareBB[sq])
}

// Toggle flips the bit at the given square.
func (b Bitboard) Toggle(sq Square) Bitboard {
	return b.Xor(squareBB[sq])
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	s := squareBB[sq]
	return b.lo&s.lo|b.hi&s.hi != 0
}

// And returns the intersection of two bitboards.
func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{lo: b.lo & o.lo, hi: b.hi & o.hi}
}

// Or returns the union of two bitboards.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{lo: b.lo | o.lo, hi: b.hi | o.hi}
}

// Xor returns the symmetric difference of two bitboards.
func (b Bitboard) Xor(o Bitboard) Bitboard {
	return Bitboard{lo: b.lo ^ o.lo, hi: b.hi ^ o.hi}
}

// AndNot returns the squares of b that are not in o.
func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{lo: b.lo &^ o.lo, hi: b.hi &^ o.hi}
}

// Not returns the complement over the 81 board squares.
func (b Bitboard) Not() Bitboard {
	return Bitboard{lo: ^b.lo & loMask, hi: ^b.hi & hiMask}
}

// IsZero returns true if no bits are set.
func (b Bitboard) IsZero() bool {
	return b.lo|b.hi == 0
}

// Any returns true if at least one bit is set.
func (b Bitboard) Any() bool {
	return b.lo|b.hi != 0
}

// MoreThanOne returns true if two or more bits are set.
func (b Bitboard) MoreThanOne() bool {
	if b.lo != 0 && b.hi != 0 {
		return true
	}
	return b.lo&(b.lo-1) != 0 || b.hi&(b.hi-1) != 0
}

// PopCount returns the number of set bits (population count).
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b.lo) + bits.OnesCount64(b.hi)
}

// LSB returns the lowest set square, or NoSquare if empty.
func (b Bitboard) LSB() Square {
	if b.lo != 0 {
		return Square(bits.TrailingZeros64(b.lo))
	}
	if b.hi != 0 {
		return Square(bits.TrailingZeros64(b.hi) + loSquares)
	}
	return NoSquare
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	if b.lo != 0 {
		sq := Square(bits.TrailingZeros64(b.lo))
		b.lo &= b.lo - 1
		return sq
	}
	if b.hi != 0 {
		sq := Square(bits.TrailingZeros64(b.hi) + loSquares)
		b.hi &= b.hi - 1
		return sq
	}
	return NoSquare
}

// ForEach calls f for every set square from low to high.
func (b Bitboard) ForEach(f func(Square)) {
	for b.Any() {
		f(b.PopLSB())
	}
}

// Squares returns the set squares in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	b.ForEach(func(sq Square) {
		squares = append(squares, sq)
	})
	return squares
}

// fold merges both lanes into one word. Squares i and i+63 share a rank and
// lie seven files apart, so no relevant occupancy mask contains both.
func (b Bitboard) fold() uint64 {
	return b.lo | b.hi
}

// Shift moves every set bit one step in direction d. Bits that would leave
// the board, including across the top or bottom rank, are dropped.
func (b Bitboard) Shift(d Direction) Bitboard {
	_, dr := d.delta()
	switch dr {
	case 1:
		b = b.AndNot(rankBB[RankA])
	case 2:
		b = b.AndNot(rankBB[RankA].Or(rankBB[RankB]))
	case -1:
		b = b.AndNot(rankBB[RankI])
	case -2:
		b = b.AndNot(rankBB[RankI].Or(rankBB[RankH]))
	}

	if d > 0 {
		return b.shiftLeft(uint(d))
	}
	return b.shiftRight(uint(-d))
}

// shiftLeft moves bits toward higher squares, carrying from the low lane.
func (b Bitboard) shiftLeft(n uint) Bitboard {
	return Bitboard{
		lo: (b.lo << n) & loMask,
		hi: ((b.hi << n) | (b.lo >> (loSquares - n))) & hiMask,
	}
}

// shiftRight moves bits toward lower squares, borrowing from the high lane.
func (b Bitboard) shiftRight(n uint) Bitboard {
	return Bitboard{
		lo: ((b.lo >> n) | (b.hi << (loSquares - n))) & loMask,
		hi: b.hi >> n,
	}
}

// String returns a visual representation of the bitboard, rank a on top and
// file 9 on the left.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := RankA; rank >= RankI; rank-- {
		for file := File9; file >= File1; file-- {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
