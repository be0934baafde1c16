// Package board implements the shogi rules core: an 81-square bitboard, attack
// tables, position and move value types, and an incrementally updated game state.
package board

import "fmt"

// Square represents a square on the shogi board (0-80).
// Squares are numbered file-major: Sq1I=0, Sq1A=8, Sq2I=9, Sq9A=80.
// Rank index 0 is rank "i" (Black's back rank) and 8 is rank "a".
type Square uint8

// NumSquares is the number of board squares.
const NumSquares = 81

// Square constants for all 81 squares.
const (
	Sq1I Square = iota
	Sq1H
	Sq1G
	Sq1F
	Sq1E
	Sq1D
	Sq1C
	Sq1B
	Sq1A
	Sq2I
	Sq2H
	Sq2G
	Sq2F
	Sq2E
	Sq2D
	Sq2C
	Sq2B
	Sq2A
	Sq3I
	Sq3H
	Sq3G
	Sq3F
	Sq3E
	Sq3D
	Sq3C
	Sq3B
	Sq3A
	Sq4I
	Sq4H
	Sq4G
	Sq4F
	Sq4E
	Sq4D
	Sq4C
	Sq4B
	Sq4A
	Sq5I
	Sq5H
	Sq5G
	Sq5F
	Sq5E
	Sq5D
	Sq5C
	Sq5B
	Sq5A
	Sq6I
	Sq6H
	Sq6G
	Sq6F
	Sq6E
	Sq6D
	Sq6C
	Sq6B
	Sq6A
	Sq7I
	Sq7H
	Sq7G
	Sq7F
	Sq7E
	Sq7D
	Sq7C
	Sq7B
	Sq7A
	Sq8I
	Sq8H
	Sq8G
	Sq8F
	Sq8E
	Sq8D
	Sq8C
	Sq8B
	Sq8A
	Sq9I
	Sq9H
	Sq9G
	Sq9F
	Sq9E
	Sq9D
	Sq9C
	Sq9B
	Sq9A
	NoSquare Square = NumSquares
)

// Files and ranks are indexed from 0. File1 is the rightmost file from Black's
// side; RankI is Black's back rank.
const (
	File1 = iota
	File2
	File3
	File4
	File5
	File6
	File7
	File8
	File9
)

const (
	RankI = iota
	RankH
	RankG
	RankF
	RankE
	RankD
	RankC
	RankB
	RankA
)

// Direction is a signed square offset. Adding a direction to a square walks one
// step on the board; the caller is responsible for staying on the board.
type Direction int8

const (
	North          Direction = 1
	South          Direction = -1
	West           Direction = 9
	East           Direction = -9
	NorthWest      Direction = 10
	NorthEast      Direction = -8
	SouthWest      Direction = 8
	SouthEast      Direction = -10
	NorthNorthWest Direction = 11
	NorthNorthEast Direction = -7
	SouthSouthWest Direction = 7
	SouthSouthEast Direction = -11
	NoDirection    Direction = 0
)

// delta returns the file and rank components of the direction.
func (d Direction) delta() (df, dr int) {
	switch d {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case West:
		return 1, 0
	case East:
		return -1, 0
	case NorthWest:
		return 1, 1
	case NorthEast:
		return -1, 1
	case SouthWest:
		return 1, -1
	case SouthEast:
		return -1, -1
	case NorthNorthWest:
		return 1, 2
	case NorthNorthEast:
		return -1, 2
	case SouthSouthWest:
		return 1, -2
	case SouthSouthEast:
		return -1, -2
	}
	return 0, 0
}

// Forward returns the direction a color's pawns move in.
func Forward(c Color) Direction {
	if c == Black {
		return North
	}
	return South
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(file*9 + rank)
}

// File returns the file index (0 = file 1, 8 = file 9).
func (sq Square) File() int {
	return int(sq) / 9
}

// Rank returns the rank index (0 = rank i, 8 = rank a).
func (sq Square) Rank() int {
	return int(sq) % 9
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Add walks one step in direction d. It returns NoSquare if the step leaves the board.
func (sq Square) Add(d Direction) Square {
	df, dr := d.delta()
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 8 || r < 0 || r > 8 {
		return NoSquare
	}
	return NewSquare(f, r)
}

// RelativeRank returns the rank counted from the color's own back rank
// (0 = own back rank, 8 = the opponent's back rank).
func (sq Square) RelativeRank(c Color) int {
	if c == Black {
		return sq.Rank()
	}
	return 8 - sq.Rank()
}

// Flip returns the square seen from the other side of the board.
func (sq Square) Flip() Square {
	return NumSquares - 1 - sq
}

// String returns the SFEN notation for the square (e.g., "7g").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", '1'+sq.File(), 'a'+(8-sq.Rank()))
}

// ParseSquare parses SFEN notation (e.g., "7g") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0] - '1')
	rank := 8 - int(s[1]-'a')

	if file < 0 || file > 8 || rank < 0 || rank > 8 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}
