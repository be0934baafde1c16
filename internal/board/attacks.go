package board

import "sync"

// Pre-computed attack tables
var (
	pawnAttacks   [2][NumSquares]Bitboard
	knightAttacks [2][NumSquares]Bitboard
	silverAttacks [2][NumSquares]Bitboard
	goldAttacks   [2][NumSquares]Bitboard
	kingAttacks   [NumSquares]Bitboard

	betweenBB   [NumSquares][NumSquares]Bitboard
	lineBB      [NumSquares][NumSquares]Bitboard
	directionOf [NumSquares][NumSquares]Direction

	diagBB     [NumSquares]Bitboard
	crossBB    [NumSquares]Bitboard
	forwardBB  [2][NumSquares]Bitboard
	backwardBB [2][NumSquares]Bitboard

	promotionZone [2]Bitboard
)

var (
	initOnce sync.Once
	initErr  error
)

// Initialize builds the attack and magic tables. Only the first call does any
// work; later calls return the first result.
func Initialize() error {
	initOnce.Do(func() {
		initStepAttacks()
		initLines()
		initErr = initMagics()
	})
	return initErr
}

// mustInitialize is used by constructors that cannot return an error.
func mustInitialize() {
	if err := Initialize(); err != nil {
		panic(err)
	}
}

func stepBB(sq Square, dirs ...Direction) Bitboard {
	var bb Bitboard
	for _, d := range dirs {
		bb = bb.Or(SquareBB(sq.Add(d)))
	}
	return bb
}

func initStepAttacks() {
	for sq := Square(0); sq < NoSquare; sq++ {
		pawnAttacks[Black][sq] = stepBB(sq, North)
		pawnAttacks[White][sq] = stepBB(sq, South)

		knightAttacks[Black][sq] = stepBB(sq, NorthNorthWest, NorthNorthEast)
		knightAttacks[White][sq] = stepBB(sq, SouthSouthWest, SouthSouthEast)

		silverAttacks[Black][sq] = stepBB(sq, North, NorthWest, NorthEast, SouthWest, SouthEast)
		silverAttacks[White][sq] = stepBB(sq, South, SouthWest, SouthEast, NorthWest, NorthEast)

		goldAttacks[Black][sq] = stepBB(sq, North, NorthWest, NorthEast, West, East, South)
		goldAttacks[White][sq] = stepBB(sq, South, SouthWest, SouthEast, West, East, North)

		kingAttacks[sq] = stepBB(sq, North, South, West, East, NorthWest, NorthEast, SouthWest, SouthEast)
	}

	for sq := Square(0); sq < NoSquare; sq++ {
		if sq.Rank() >= RankC {
			promotionZone[Black] = promotionZone[Black].Set(sq)
		}
		if sq.Rank() <= RankG {
			promotionZone[White] = promotionZone[White].Set(sq)
		}
	}
}

func initLines() {
	for from := Square(0); from < NoSquare; from++ {
		for _, d := range []Direction{North, South, West, East, NorthWest, NorthEast, SouthWest, SouthEast} {
			var ray Bitboard
			for to := from.Add(d); to != NoSquare; to = to.Add(d) {
				directionOf[from][to] = d
				betweenBB[from][to] = ray
				ray = ray.Set(to)
			}

			switch d {
			case North, South, West, East:
				crossBB[from] = crossBB[from].Or(ray)
			default:
				diagBB[from] = diagBB[from].Or(ray)
			}
			switch d {
			case North:
				forwardBB[Black][from] = ray
				backwardBB[White][from] = ray
			case South:
				forwardBB[White][from] = ray
				backwardBB[Black][from] = ray
			}
		}
	}

	for from := Square(0); from < NoSquare; from++ {
		for to := Square(0); to < NoSquare; to++ {
			d := directionOf[from][to]
			if d == NoDirection {
				continue
			}
			line := SquareBB(from)
			for s := from.Add(d); s != NoSquare; s = s.Add(d) {
				line = line.Set(s)
			}
			for s := from.Add(-d); s != NoSquare; s = s.Add(-d) {
				line = line.Set(s)
			}
			lineBB[from][to] = line
		}
	}
}

// Between returns the squares strictly between a and b if they share a line.
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// Line returns the full board line through a and b, or empty if not aligned.
func Line(a, b Square) Bitboard {
	return lineBB[a][b]
}

// DirectionOf returns the step direction from a toward b, or NoDirection.
func DirectionOf(a, b Square) Direction {
	return directionOf[a][b]
}

// DiagBB returns both diagonals through sq on an empty board.
func DiagBB(sq Square) Bitboard {
	return diagBB[sq]
}

// CrossBB returns the rank and file through sq on an empty board.
func CrossBB(sq Square) Bitboard {
	return crossBB[sq]
}

// ForwardBB returns the squares in front of sq on its file, from c's side.
func ForwardBB(c Color, sq Square) Bitboard {
	return forwardBB[c][sq]
}

// BackwardBB returns the squares behind sq on its file, from c's side.
func BackwardBB(c Color, sq Square) Bitboard {
	return backwardBB[c][sq]
}

// PromotionZone returns the three ranks where c's pieces may promote.
func PromotionZone(c Color) Bitboard {
	return promotionZone[c]
}

// KingAttacks returns the eight neighbours of sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// LanceAttacks returns lance attacks for color c.
func LanceAttacks(c Color, sq Square, occupied Bitboard) Bitboard {
	return RookAttacks(sq, occupied).And(forwardBB[c][sq])
}

// StepAttacks returns the single-step part of a piece's moves. Sliders have
// none, except the king-like steps of promoted bishops and rooks.
func StepAttacks(c Color, pt PieceType, sq Square) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[c][sq]
	case Silver:
		return silverAttacks[c][sq]
	case Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return goldAttacks[c][sq]
	case King:
		return kingAttacks[sq]
	case ProBishop:
		return kingAttacks[sq].And(crossBB[sq])
	case ProRook:
		return kingAttacks[sq].And(diagBB[sq])
	}
	return EmptyBB
}

// Attacks returns every square a piece of color c and type pt on sq attacks.
func Attacks(c Color, pt PieceType, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Lance:
		return LanceAttacks(c, sq, occupied)
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case ProBishop:
		return BishopAttacks(sq, occupied).Or(kingAttacks[sq])
	case ProRook:
		return RookAttacks(sq, occupied).Or(kingAttacks[sq])
	}
	return StepAttacks(c, pt, sq)
}
