package board

// Color represents the side of a piece or player. Black moves first.
type Color uint8

const (
	Black Color = iota
	White
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "NoColor"
	}
}

// PieceType represents the kind of a shogi piece. The numeric values are part
// of the Move32 layout and must not change.
type PieceType uint8

const (
	Empty PieceType = iota
	Pawn
	Lance
	Knight
	Silver
	Bishop
	Rook
	Gold
	King
	ProPawn
	ProLance
	ProKnight
	ProSilver
	ProBishop
	ProRook

	NumPieceType = 15
)

// HandTypes lists the piece types that can be held in a stand, in the order
// they are written in SFEN.
var HandTypes = [7]PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// Promote returns the promoted type.
func (pt PieceType) Promote() PieceType {
	return pt ^ 8
}

// Demote returns the unpromoted type.
func (pt PieceType) Demote() PieceType {
	if pt == King {
		return King
	}
	return pt & 7
}

// IsPromoted returns true for the six promoted types.
func (pt PieceType) IsPromoted() bool {
	return pt != King && pt&8 != 0
}

// CanPromote returns true if the type has a promoted form.
func (pt PieceType) CanPromote() bool {
	return pt >= Pawn && pt <= Rook
}

// IsSlider returns true for bishop, rook and their promoted forms. Lances are
// not counted; they score as step pieces in declaration.
func (pt PieceType) IsSlider() bool {
	return pt == Bishop || pt == Rook || pt == ProBishop || pt == ProRook
}

var pieceTypeSFEN = [NumPieceType]string{
	"", "P", "L", "N", "S", "B", "R", "G", "K", "+P", "+L", "+N", "+S", "+B", "+R",
}

var pieceTypeNames = [NumPieceType]string{
	"Empty", "Pawn", "Lance", "Knight", "Silver", "Bishop", "Rook", "Gold", "King",
	"ProPawn", "ProLance", "ProKnight", "ProSilver", "ProBishop", "ProRook",
}

// String returns the piece type name.
func (pt PieceType) String() string {
	if pt >= NumPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// SFEN returns the upper-case SFEN letter(s) of the type.
func (pt PieceType) SFEN() string {
	if pt >= NumPieceType {
		return ""
	}
	return pieceTypeSFEN[pt]
}

// pieceTypeFromChar converts an unpromoted SFEN letter (either case).
func pieceTypeFromChar(c byte) PieceType {
	switch c {
	case 'P', 'p':
		return Pawn
	case 'L', 'l':
		return Lance
	case 'N', 'n':
		return Knight
	case 'S', 's':
		return Silver
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'G', 'g':
		return Gold
	case 'K', 'k':
		return King
	default:
		return Empty
	}
}

// Piece combines Color and PieceType into a single value.
// Encoded as: color<<4 | pieceType
type Piece uint8

// NoPiece marks an empty square.
const NoPiece Piece = 0

// NewPiece creates a Piece from Color and PieceType.
func NewPiece(c Color, pt PieceType) Piece {
	if pt == Empty {
		return NoPiece
	}
	return Piece(c)<<4 | Piece(pt)
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & 15)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p == NoPiece {
		return NoColor
	}
	return Color((p & 16) >> 4)
}

// String returns the SFEN text for the piece.
// Uppercase for Black, lowercase for White.
func (p Piece) String() string {
	if p == NoPiece {
		return " "
	}
	s := p.Type().SFEN()
	if p.Color() == White {
		b := []byte(s)
		for i := range b {
			if b[i] >= 'A' && b[i] <= 'Z' {
				b[i] += 'a' - 'A'
			}
		}
		s = string(b)
	}
	return s
}
