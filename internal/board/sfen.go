package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartSFEN is the SFEN string for the standard initial position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// ErrMoveAfterWin is returned when a move list continues after "win".
var ErrMoveAfterWin = errors.New("board: move after declaration")

// ParseSFEN parses a SFEN string (board, side, stands, optional move number)
// and returns a validated Position. "startpos" is accepted as well.
func ParseSFEN(sfen string) (Position, error) {
	var pos Position

	parts := strings.Fields(sfen)
	if len(parts) > 0 && parts[0] == "startpos" {
		parts = strings.Fields(StartSFEN)
	}
	if len(parts) < 3 {
		return pos, fmt.Errorf("invalid SFEN: need at least 3 fields, got %d", len(parts))
	}

	// Board (field 0)
	if err := parseBoard(&pos, parts[0]); err != nil {
		return pos, err
	}

	// Side to move (field 1)
	switch parts[1] {
	case "b":
		pos.SideToMove = Black
	case "w":
		pos.SideToMove = White
	default:
		return pos, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Stands (field 2)
	if err := parseStands(&pos, parts[2]); err != nil {
		return pos, err
	}

	// Move number (field 3, optional)
	if len(parts) > 3 {
		n, err := strconv.Atoi(parts[3])
		if err != nil || n < 1 || n > 1<<16 {
			return pos, fmt.Errorf("invalid move number: %s", parts[3])
		}
		pos.PlyOffset = uint16(n - 1)
	}

	if err := pos.Validate(); err != nil {
		return pos, fmt.Errorf("invalid SFEN %q: %w", sfen, err)
	}
	return pos, nil
}

// parseBoard parses the board section. Rows run from rank a down to rank i,
// and each row from file 9 to file 1.
func parseBoard(pos *Position, board string) error {
	rows := strings.Split(board, "/")
	if len(rows) != 9 {
		return fmt.Errorf("invalid board: need 9 rows, got %d", len(rows))
	}

	for i, row := range rows {
		rank := RankA - i
		file := File9
		promoted := false

		for j := 0; j < len(row); j++ {
			c := row[j]
			switch {
			case c >= '1' && c <= '9':
				if promoted {
					return fmt.Errorf("dangling '+' in row %d", i+1)
				}
				file -= int(c - '0')
			case c == '+':
				if promoted {
					return fmt.Errorf("double '+' in row %d", i+1)
				}
				promoted = true
			default:
				if file < File1 {
					return fmt.Errorf("too many squares in row %d", i+1)
				}
				pt := pieceTypeFromChar(c)
				if pt == Empty {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				if promoted {
					if !pt.CanPromote() {
						return fmt.Errorf("piece %c cannot be promoted", c)
					}
					pt = pt.Promote()
					promoted = false
				}
				color := Black
				if c >= 'a' && c <= 'z' {
					color = White
				}
				pos.putPiece(NewSquare(file, rank), NewPiece(color, pt))
				file--
			}
		}

		if promoted || file != File1-1 {
			return fmt.Errorf("invalid number of squares in row %d", i+1)
		}
	}

	return nil
}

// parseStands parses the stand section, e.g. "2Pb" or "-".
func parseStands(pos *Position, stands string) error {
	if stands == "-" {
		return nil
	}

	count := 0
	for i := 0; i < len(stands); i++ {
		c := stands[i]
		if c >= '0' && c <= '9' {
			count = count*10 + int(c-'0')
			if count > StandMax[Pawn] {
				return fmt.Errorf("stand count too large in %q", stands)
			}
			continue
		}

		pt := pieceTypeFromChar(c)
		if !isHandType(pt) {
			return fmt.Errorf("invalid stand piece: %c", c)
		}
		color := Black
		if c >= 'a' && c <= 'z' {
			color = White
		}
		if count == 0 {
			count = 1
		}
		for ; count > 0; count-- {
			if pos.Stands[color].Count(pt) >= StandMax[pt] {
				return fmt.Errorf("too many %v in stand", pt)
			}
			pos.incrementStand(color, pt)
		}
	}
	if count != 0 {
		return fmt.Errorf("dangling count in stand %q", stands)
	}

	return nil
}

// SFEN returns the SFEN representation of the position.
func (p *Position) SFEN() string {
	var sb strings.Builder

	for rank := RankA; rank >= RankI; rank-- {
		empty := 0
		for file := File9; file >= File1; file-- {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank != RankI {
			sb.WriteByte('/')
		}
	}

	if p.SideToMove == Black {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}

	if p.Stands[Black].IsEmpty() && p.Stands[White].IsEmpty() {
		sb.WriteString("-")
	} else {
		p.Stands[Black].sfen(&sb, Black)
		p.Stands[White].sfen(&sb, White)
	}

	fmt.Fprintf(&sb, " %d", int(p.PlyOffset)+1)
	return sb.String()
}

// ParseMove parses a move in SFEN notation ("7g7f", "8h2b+", "P*5e",
// "resign", "win") against the position. The moving and captured piece types
// are taken from the board. The move is not checked for legality.
func ParseMove(pos *Position, s string) (Move32, error) {
	switch s {
	case "resign":
		return MoveNone, nil
	case "win":
		return MoveWin, nil
	}

	if len(s) < 4 || len(s) > 5 {
		return MoveInvalid, fmt.Errorf("invalid move: %q", s)
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return MoveInvalid, fmt.Errorf("invalid move %q: %w", s, err)
	}

	if s[1] == '*' {
		pt := pieceTypeFromChar(s[0])
		if len(s) != 4 || !isHandType(pt) || s[0] < 'A' || s[0] > 'Z' {
			return MoveInvalid, fmt.Errorf("invalid drop: %q", s)
		}
		return NewDropMove(to, pt), nil
	}

	if len(s) == 5 && s[4] != '+' {
		return MoveInvalid, fmt.Errorf("invalid promotion suffix: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return MoveInvalid, fmt.Errorf("invalid move %q: %w", s, err)
	}

	pt := pos.Board[from].Type()
	if pt == Empty {
		return MoveInvalid, fmt.Errorf("invalid move %q: no piece on %v", s, from)
	}
	captured := pos.Board[to].Type()

	if len(s) == 5 {
		return NewPromotingMove(from, to, pt, captured), nil
	}
	return NewBoardMove(from, to, pt, captured), nil
}

// ParseMove parses a move against the current position.
func (s *State) ParseMove(text string) (Move32, error) {
	return ParseMove(&s.pos, text)
}

// NewStateFromSFEN builds a state from "startpos", "sfen <sfen>" or a bare
// SFEN, each optionally followed by "moves m1 m2 ...". The moves are applied
// without legality checks. A trailing "win" is accepted and ignored.
func NewStateFromSFEN(text string) (*State, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "sfen ")

	posText, movesText, hasMoves := strings.Cut(text, "moves")
	pos, err := ParseSFEN(posText)
	if err != nil {
		return nil, err
	}

	s := NewState(pos)
	if !hasMoves {
		return s, nil
	}

	won := false
	for _, field := range strings.Fields(movesText) {
		if won {
			return nil, ErrMoveAfterWin
		}
		m, err := s.ParseMove(field)
		if err != nil {
			return nil, err
		}
		switch {
		case m.IsWin():
			won = true
		case m.IsNone():
			return nil, fmt.Errorf("cannot apply %q", field)
		default:
			if err := s.checkApplicable(m); err != nil {
				return nil, err
			}
			s.DoMove(m)
		}
	}

	return s, nil
}

// checkApplicable rejects moves DoMove would panic on.
func (s *State) checkApplicable(m Move32) error {
	us := s.pos.SideToMove
	if m.IsDrop() {
		if s.pos.Stands[us].Count(m.DropType()) == 0 {
			return fmt.Errorf("cannot drop %v: %v has none", m, us)
		}
		if s.pos.Board[m.To()] != NoPiece {
			return fmt.Errorf("cannot drop %v: square occupied", m)
		}
		return nil
	}

	moving := s.pos.Board[m.From()]
	if moving == NoPiece || moving.Color() != us {
		return fmt.Errorf("cannot play %v: no %v piece on %v", m, us, m.From())
	}
	if target := s.pos.Board[m.To()]; target != NoPiece && target.Color() == us {
		return fmt.Errorf("cannot play %v: own piece on %v", m, m.To())
	}
	if target := s.pos.Board[m.To()]; target.Type() == King {
		return fmt.Errorf("cannot play %v: captures a king", m)
	}
	if m.IsPromotion() && !moving.Type().CanPromote() {
		return fmt.Errorf("cannot play %v: %v cannot promote", m, moving.Type())
	}
	return nil
}

// SFEN returns the initial position followed by the moves played, in the
// form accepted by NewStateFromSFEN.
func (s *State) SFEN() string {
	sfen := s.initial.SFEN()
	moves := s.Moves()
	if len(moves) == 0 {
		return sfen
	}

	var sb strings.Builder
	sb.WriteString(sfen)
	sb.WriteString(" moves")
	for _, m := range moves {
		sb.WriteByte(' ')
		sb.WriteString(m.String())
	}
	return sb.String()
}
