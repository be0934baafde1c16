package board

import (
	"errors"
	"fmt"
	"math/bits"
)

// Magic bitboard implementation for sliding piece attacks.
// Multipliers are searched at start-up from a fixed seed, so every process
// builds identical tables.

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   Bitboard // Relevant occupancy mask (excludes edges)
	Magic  uint64   // Magic multiplier
	Shift  uint8    // Bits to shift right
	Offset uint32   // Index into attack table
}

// index hashes an occupancy into the attack table. The masked occupancy is
// folded into one word before the multiply.
func (m *Magic) index(occupied Bitboard) uint32 {
	key := occupied.And(m.Mask).fold()
	return m.Offset + uint32((key*m.Magic)>>m.Shift)
}

// ErrMagicNotFound is returned when no collision-free multiplier is found
// within the retry budget.
var ErrMagicNotFound = errors.New("board: no magic multiplier found")

const (
	magicSeed uint64 = 0x5A3C9E17D2B4F681 // Fixed seed

	// Attempts per table width before widening the index by one bit.
	magicRetryBudget = 1 << 18
	magicExtraBits   = 2
)

var (
	diagDirs  = []Direction{NorthWest, NorthEast, SouthWest, SouthEast}
	crossDirs = []Direction{North, South, West, East}
)

var (
	diagMagics  [NumSquares]Magic
	crossMagics [NumSquares]Magic

	// Attack tables (fancy magic bitboards)
	diagTable  []Bitboard
	crossTable []Bitboard
)

func initMagics() error {
	rng := newPRNG(magicSeed)

	var err error
	diagTable, err = buildMagics(&diagMagics, diagMask, diagDirs, rng)
	if err != nil {
		return fmt.Errorf("diagonal magics: %w", err)
	}
	crossTable, err = buildMagics(&crossMagics, crossMask, crossDirs, rng)
	if err != nil {
		return fmt.Errorf("orthogonal magics: %w", err)
	}
	return nil
}

// buildMagics finds a multiplier for every square and concatenates the
// per-square attack tables.
func buildMagics(magics *[NumSquares]Magic, maskOf func(Square) Bitboard, dirs []Direction, rng *prng) ([]Bitboard, error) {
	var table []Bitboard

	for sq := Square(0); sq < NoSquare; sq++ {
		mask := maskOf(sq)
		n := mask.PopCount()

		// Generate all possible occupancies and compute attacks
		numEntries := 1 << n
		occupancies := make([]Bitboard, numEntries)
		attacks := make([]Bitboard, numEntries)
		for i := 0; i < numEntries; i++ {
			occupancies[i] = indexToOccupancy(i, n, mask)
			attacks[i] = slidingAttacksSlow(sq, occupancies[i], dirs)
		}

		m, entries, err := findMagic(mask, occupancies, attacks, rng)
		if err != nil {
			return nil, fmt.Errorf("square %v: %w", sq, err)
		}
		m.Offset = uint32(len(table))
		magics[sq] = m
		table = append(table, entries...)
	}

	return table, nil
}

// findMagic searches sparse random multipliers until every occupancy lands in
// a slot that is empty or already holds the same attack set.
func findMagic(mask Bitboard, occupancies, attacks []Bitboard, rng *prng) (Magic, []Bitboard, error) {
	n := mask.PopCount()
	maskKey := mask.fold()

	for width := n; width <= n+magicExtraBits; width++ {
		shift := uint8(64 - width)
		entries := make([]Bitboard, 1<<width)
		epoch := make([]int, 1<<width)

		for attempt := 1; attempt <= magicRetryBudget; attempt++ {
			magic := rng.sparse()
			if bits.OnesCount64((maskKey*magic)>>56) < 6 {
				continue
			}

			ok := true
			for i, occ := range occupancies {
				idx := (occ.fold() * magic) >> shift
				if epoch[idx] < attempt {
					epoch[idx] = attempt
					entries[idx] = attacks[i]
				} else if entries[idx] != attacks[i] {
					ok = false
					break
				}
			}

			if ok {
				return Magic{Mask: mask, Magic: magic, Shift: shift}, entries, nil
			}
		}
	}

	return Magic{}, nil, ErrMagicNotFound
}

// diagMask returns the relevant occupancy mask for a bishop at square.
// Excludes edge squares since they don't affect the result.
func diagMask(sq Square) Bitboard {
	edges := FileBB(File1).Or(FileBB(File9)).Or(RankBB(RankA)).Or(RankBB(RankI))
	return slidingAttacksSlow(sq, EmptyBB, diagDirs).AndNot(edges)
}

// crossMask returns the relevant occupancy mask for a rook at square.
func crossMask(sq Square) Bitboard {
	file, rank := sq.File(), sq.Rank()

	var mask Bitboard

	// Horizontal (exclude edges unless rook is on edge)
	for f := File2; f <= File8; f++ {
		if f != file {
			mask = mask.Set(NewSquare(f, rank))
		}
	}

	// Vertical (exclude edges unless rook is on edge)
	for r := RankH; r <= RankB; r++ {
		if r != rank {
			mask = mask.Set(NewSquare(file, r))
		}
	}

	return mask
}

// indexToOccupancy converts an index to an occupancy bitboard.
func indexToOccupancy(index, n int, mask Bitboard) Bitboard {
	var occ Bitboard
	for i := 0; i < n; i++ {
		sq := mask.PopLSB()
		if index&(1<<i) != 0 {
			occ = occ.Set(sq)
		}
	}
	return occ
}

// slidingAttacksSlow computes slider attacks by ray casting (used during initialization).
func slidingAttacksSlow(sq Square, occupied Bitboard, dirs []Direction) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		for s := sq.Add(d); s != NoSquare; s = s.Add(d) {
			attacks = attacks.Set(s)
			if occupied.IsSet(s) {
				break
			}
		}
	}
	return attacks
}

// BishopAttacks returns bishop attacks from sq for the given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return diagTable[diagMagics[sq].index(occupied)]
}

// RookAttacks returns rook attacks from sq for the given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return crossTable[crossMagics[sq].index(occupied)]
}
