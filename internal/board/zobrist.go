package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility. Piece keys keep bit 0 clear
// so that bit can carry the side to move.
var zobristPiece [2][NumPieceType][NumSquares]uint64 // [Color][PieceType][Square]

// zobristWhiteToMove is XORed in when White is to move.
const zobristWhiteToMove uint64 = 1

func init() {
	initZobrist()
}

// Simple PRNG for reproducible keys and magic multipliers
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// sparse returns an odd value with few bits set, a good magic candidate.
func (p *prng) sparse() uint64 {
	return p.next()&p.next()&p.next() | 1
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	for c := Black; c <= White; c++ {
		for pt := Pawn; pt < NumPieceType; pt++ {
			for sq := Square(0); sq < NoSquare; sq++ {
				zobristPiece[c][pt][sq] = rng.next() << 1
			}
		}
	}
}

// ZobristPiece returns the hash key for a piece on a square.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 {
	return zobristPiece[c][pt][sq]
}

// standHash mixes both stands into a board hash.
func standHash(stands [2]Stand) uint64 {
	return uint64(stands[Black])<<33 ^ uint64(stands[White])<<1
}
