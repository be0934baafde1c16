package board

import (
	"fmt"
	"strings"
)

// Position is a plain shogi position: board, stands, side to move and the
// ply offset of a resumed game. It is a value type; assigning copies it.
type Position struct {
	SideToMove Color
	PlyOffset  uint16
	Board      [NumSquares]Piece
	Stands     [2]Stand
}

// StartPosition returns the standard initial position.
func StartPosition() Position {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// PieceOn returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceOn(sq Square) Piece {
	return p.Board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board[sq] == NoPiece
}

// Stand returns the stand of color c.
func (p *Position) Stand(c Color) Stand {
	return p.Stands[c]
}

// putPiece places a piece on an empty square.
func (p *Position) putPiece(sq Square, piece Piece) {
	p.Board[sq] = piece
}

// removePiece empties a square and returns what stood there.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.Board[sq]
	p.Board[sq] = NoPiece
	return piece
}

func (p *Position) incrementStand(c Color, pt PieceType) {
	p.Stands[c] = p.Stands[c].Increment(pt)
}

func (p *Position) decrementStand(c Color, pt PieceType) {
	p.Stands[c] = p.Stands[c].Decrement(pt)
}

// KingSquare scans the board for c's king. It returns NoSquare if there is none.
func (p *Position) KingSquare(c Color) Square {
	king := NewPiece(c, King)
	for sq := Square(0); sq < NoSquare; sq++ {
		if p.Board[sq] == king {
			return sq
		}
	}
	return NoSquare
}

// Validate checks that the position could arise under the rules: at most one
// king per side, no piece on a square it can never leave, no two unpromoted
// pawns of one side on a file, and no more pieces than a full set.
func (p *Position) Validate() error {
	var kings [2]int
	var pawnFiles [2][9]bool
	var total [NumPieceType]int

	for sq := Square(0); sq < NoSquare; sq++ {
		piece := p.Board[sq]
		if piece == NoPiece {
			continue
		}
		c, pt := piece.Color(), piece.Type()
		if pt == Empty || pt >= NumPieceType {
			return fmt.Errorf("invalid piece %d on %v", piece, sq)
		}
		total[pt.Demote()]++

		switch pt {
		case King:
			kings[c]++
		case Pawn:
			if pawnFiles[c][sq.File()] {
				return fmt.Errorf("%v has two pawns on file %d", c, sq.File()+1)
			}
			pawnFiles[c][sq.File()] = true
		}
		if isDeadSquare(c, pt, sq) {
			return fmt.Errorf("%v %v on %v can never move", c, pt, sq)
		}
	}

	for c := Black; c <= White; c++ {
		if kings[c] > 1 {
			return fmt.Errorf("%v has %d kings", c, kings[c])
		}
		for _, pt := range HandTypes {
			total[pt] += p.Stands[c].Count(pt)
		}
	}

	for _, pt := range HandTypes {
		if total[pt] > StandMax[pt] {
			return fmt.Errorf("too many %v pieces: %d", pt, total[pt])
		}
	}
	if p.SideToMove > White {
		return fmt.Errorf("invalid side to move %d", p.SideToMove)
	}

	return nil
}

// isDeadSquare returns true if a piece of type pt and color c on sq would have
// no legal move, ever.
func isDeadSquare(c Color, pt PieceType, sq Square) bool {
	rr := sq.RelativeRank(c)
	switch pt {
	case Pawn, Lance:
		return rr == RankA
	case Knight:
		return rr >= RankB
	}
	return false
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "White stand: %s\n", standText(p.Stands[White], White))
	sb.WriteString("   9  8  7  6  5  4  3  2  1\n")
	for rank := RankA; rank >= RankI; rank-- {
		for file := File9; file >= File1; file-- {
			piece := p.Board[NewSquare(file, rank)]
			switch {
			case piece == NoPiece:
				sb.WriteString("  .")
			case piece.Color() == White:
				fmt.Fprintf(&sb, " v%s", strings.TrimPrefix(piece.Type().SFEN(), "+"))
			default:
				fmt.Fprintf(&sb, "  %s", strings.TrimPrefix(piece.Type().SFEN(), "+"))
			}
			if piece.Type().IsPromoted() {
				sb.WriteString("+")
			} else {
				sb.WriteString(" ")
			}
		}
		fmt.Fprintf(&sb, " %c\n", 'a'+(8-rank))
	}
	fmt.Fprintf(&sb, "Black stand: %s\n", standText(p.Stands[Black], Black))
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Move number: %d\n", int(p.PlyOffset)+1)
	return sb.String()
}

func standText(s Stand, c Color) string {
	if s.IsEmpty() {
		return "-"
	}
	var sb strings.Builder
	s.sfen(&sb, c)
	return sb.String()
}
