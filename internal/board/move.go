package board

import "fmt"

// Move32 encodes a shogi move in 32 bits:
// bits 0-6:   to square (0-80)
// bits 7-13:  from square (0-80), or 81+pieceType-1 for a drop
// bit 14:     promotion flag
// bits 15-18: moving piece type
// bits 19-22: captured piece type (0 = no capture)
type Move32 uint32

// Move16 keeps the low 16 bits of a Move32: to, from and the promotion flag.
// The piece and capture types are recovered from the board.
type Move16 uint16

const (
	moveToMask      = 0x7F
	moveFromShift   = 7
	moveFromMask    = 0x7F
	movePromoteBit  = 1 << 14
	moveTypeShift   = 15
	moveTypeMask    = 0xF
	moveCaptureShft = 19
	moveCaptureMask = 0xF
)

// Sentinel moves.
const (
	// MoveNone is the zero move.
	MoveNone Move32 = 0
	// MoveWin claims a declaration win; no real move has from = to = 1.
	MoveWin Move32 = 1<<moveFromShift | 1
	// MoveInvalid marks an unusable move.
	MoveInvalid Move32 = NumSquares<<moveFromShift | NumSquares
)

// NewBoardMove creates a non-promoting move. Pass Empty as capture for a quiet move.
func NewBoardMove(from, to Square, pt, capture PieceType) Move32 {
	return Move32(to) | Move32(from)<<moveFromShift |
		Move32(pt)<<moveTypeShift | Move32(capture)<<moveCaptureShft
}

// NewPromotingMove creates a move that promotes the moving piece.
func NewPromotingMove(from, to Square, pt, capture PieceType) Move32 {
	return NewBoardMove(from, to, pt, capture) | movePromoteBit
}

// NewDropMove creates a drop of piece type pt on square to.
func NewDropMove(to Square, pt PieceType) Move32 {
	return Move32(to) | Move32(NumSquares+int(pt)-1)<<moveFromShift | Move32(pt)<<moveTypeShift
}

// To returns the destination square.
func (m Move32) To() Square {
	return Square(m & moveToMask)
}

// From returns the origin square. For drops the value is 81 or above.
func (m Move32) From() Square {
	return Square((m >> moveFromShift) & moveFromMask)
}

// IsPromotion returns true if the move promotes.
func (m Move32) IsPromotion() bool {
	return m&movePromoteBit != 0
}

// PieceType returns the type of the moving (or dropped) piece.
func (m Move32) PieceType() PieceType {
	return PieceType((m >> moveTypeShift) & moveTypeMask)
}

// CaptureType returns the captured piece type, Empty if none.
func (m Move32) CaptureType() PieceType {
	return PieceType((m >> moveCaptureShft) & moveCaptureMask)
}

// IsDrop returns true if the move drops a piece from the stand.
func (m Move32) IsDrop() bool {
	return m.From() >= NumSquares
}

// DropType returns the dropped piece type (only valid if IsDrop() is true).
func (m Move32) DropType() PieceType {
	return PieceType(int(m.From()) - NumSquares + 1)
}

// IsCapture returns true if this move captures a piece.
func (m Move32) IsCapture() bool {
	return m.CaptureType() != Empty
}

// IsNone returns true for MoveNone.
func (m Move32) IsNone() bool {
	return m == MoveNone
}

// IsWin returns true for MoveWin.
func (m Move32) IsWin() bool {
	return m == MoveWin
}

// withTypes replaces the moving and captured piece types.
func (m Move32) withTypes(pt, capture PieceType) Move32 {
	m &^= moveTypeMask<<moveTypeShift | moveCaptureMask<<moveCaptureShft
	return m | Move32(pt)<<moveTypeShift | Move32(capture)<<moveCaptureShft
}

// Move16 truncates the move to its compact form.
func (m Move32) Move16() Move16 {
	return Move16(m & 0xFFFF)
}

// String returns the SFEN form of the move (e.g., "7g7f", "8h2b+", "B*4e").
func (m Move32) String() string {
	switch m {
	case MoveNone:
		return "resign"
	case MoveWin:
		return "win"
	case MoveInvalid:
		return "invalid"
	}
	return m.Move16().String()
}

// To returns the destination square.
func (m Move16) To() Square {
	return Square(m & moveToMask)
}

// From returns the origin square. For drops the value is 81 or above.
func (m Move16) From() Square {
	return Square((m >> moveFromShift) & moveFromMask)
}

// IsPromotion returns true if the move promotes.
func (m Move16) IsPromotion() bool {
	return m&movePromoteBit != 0
}

// IsDrop returns true if the move drops a piece from the stand.
func (m Move16) IsDrop() bool {
	return m.From() >= NumSquares
}

// DropType returns the dropped piece type (only valid if IsDrop() is true).
func (m Move16) DropType() PieceType {
	return PieceType(int(m.From()) - NumSquares + 1)
}

// String returns the SFEN form of the move.
func (m Move16) String() string {
	switch Move32(m) {
	case MoveNone:
		return "resign"
	case MoveWin:
		return "win"
	case MoveInvalid:
		return "invalid"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%s*%s", m.DropType().SFEN(), m.To())
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

// MaxMoves bounds the number of legal moves in any shogi position (593).
const MaxMoves = 600

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move32
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move32) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move32 {
	return ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move32) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move32 {
	return ml.moves[:ml.count]
}
