package board

import "fmt"

// EndingRule selects how a game may end other than by checkmate.
type EndingRule uint8

const (
	EndingRuleNone EndingRule = iota
	// EndingRuleDeclare27 allows the entering-king declaration win.
	EndingRuleDeclare27
)

// String returns the rule name.
func (r EndingRule) String() string {
	switch r {
	case EndingRuleNone:
		return "none"
	case EndingRuleDeclare27:
		return "declare27"
	default:
		return "unknown"
	}
}

// StateConfig holds per-game settings that the rules core does not enforce by
// itself but exposes to callers.
type StateConfig struct {
	EndingRule EndingRule
	MaxPly     int // 0 means unlimited
}

// stepEntry caches the derived facts of one ply so undo never recomputes them.
type stepEntry struct {
	move       Move32 // move played from this ply, MoveNone at the top
	boardHash  uint64 // hash of board and side to move at this ply
	stands     [2]Stand
	checkCount [2]uint16 // consecutive checks given by each color
	checkers   Bitboard  // pieces checking the side to move
	defenders  [2]Bitboard
}

// State is a position plus everything derived from it: per-color and
// per-type bitboards, king squares, the running hash and a per-ply history.
// A State is not safe for concurrent use; use Clone to hand work to another
// goroutine.
type State struct {
	pos     Position
	initial Position
	config  StateConfig

	colorBB   [2]Bitboard
	typeBB    [NumPieceType]Bitboard
	kingSq    [2]Square
	boardHash uint64

	history []stepEntry
}

// NewState builds a state from a position. The attack tables are initialized
// on first use.
func NewState(pos Position) *State {
	mustInitialize()
	s := &State{
		pos:     pos,
		initial: pos,
		history: make([]stepEntry, 0, 256),
	}
	s.refresh()
	return s
}

// NewStateWithPly builds a state whose ply counter starts at plyOffset.
func NewStateWithPly(pos Position, plyOffset int) *State {
	pos.PlyOffset = uint16(plyOffset)
	return NewState(pos)
}

// refresh recomputes every derived structure from the position.
func (s *State) refresh() {
	s.colorBB = [2]Bitboard{}
	s.typeBB = [NumPieceType]Bitboard{}
	s.kingSq = [2]Square{NoSquare, NoSquare}
	s.boardHash = 0

	for sq := Square(0); sq < NoSquare; sq++ {
		piece := s.pos.Board[sq]
		if piece == NoPiece {
			continue
		}
		c, pt := piece.Color(), piece.Type()
		s.colorBB[c] = s.colorBB[c].Set(sq)
		s.typeBB[pt] = s.typeBB[pt].Set(sq)
		s.boardHash ^= zobristPiece[c][pt][sq]
		if pt == King {
			s.kingSq[c] = sq
		}
	}
	if s.pos.SideToMove == White {
		s.boardHash ^= zobristWhiteToMove
	}

	us := s.pos.SideToMove
	them := us.Other()

	entry := stepEntry{boardHash: s.boardHash, stands: s.pos.Stands}
	entry.checkers = s.stepCheckers(us)
	entry.defenders[us] = s.computeDefenders(us, &entry.checkers)
	entry.defenders[them] = s.computeDefenders(them, nil)
	if entry.checkers.Any() {
		entry.checkCount[them] = 1
	}

	s.history = append(s.history[:0], entry)
}

// place puts a piece on an empty square and updates bitboards and hash.
func (s *State) place(c Color, pt PieceType, sq Square) {
	s.pos.putPiece(sq, NewPiece(c, pt))
	s.colorBB[c] = s.colorBB[c].Toggle(sq)
	s.typeBB[pt] = s.typeBB[pt].Toggle(sq)
	s.boardHash ^= zobristPiece[c][pt][sq]
	if pt == King {
		s.kingSq[c] = sq
	}
}

// lift removes a piece from a square and updates bitboards and hash.
func (s *State) lift(c Color, pt PieceType, sq Square) {
	s.pos.removePiece(sq)
	s.colorBB[c] = s.colorBB[c].Toggle(sq)
	s.typeBB[pt] = s.typeBB[pt].Toggle(sq)
	s.boardHash ^= zobristPiece[c][pt][sq]
}

// DoMove applies a legal move. Legality is not checked, but a move that cannot
// be applied at all panics: squares off the board, a drop onto an occupied
// square or of a piece not in hand, a board move from a square the side to
// move does not own, onto its own piece, or onto its origin (the sentinels).
func (s *State) DoMove(m Move32) {
	to := m.To()
	if to >= NoSquare {
		panic(fmt.Sprintf("board: move %v has no destination square", m))
	}

	us := s.pos.SideToMove
	them := us.Other()
	top := &s.history[len(s.history)-1]

	if m.IsDrop() {
		if s.pos.Board[to] != NoPiece {
			panic(fmt.Sprintf("board: drop %v onto occupied %v", m, to))
		}
		pt := m.DropType()
		s.pos.decrementStand(us, pt)
		s.place(us, pt, to)
		m = m.withTypes(pt, Empty)
	} else {
		from := m.From()
		moving := s.pos.Board[from]
		if moving == NoPiece || moving.Color() != us {
			panic(fmt.Sprintf("board: no %v piece on %v for move %v", us, from, m))
		}
		if from == to {
			panic(fmt.Sprintf("board: move %v does not leave %v", m, from))
		}
		if target := s.pos.Board[to]; target != NoPiece && target.Color() == us {
			panic(fmt.Sprintf("board: move %v lands on own piece at %v", m, to))
		}
		pt := moving.Type()
		captured := s.pos.Board[to].Type()
		m = m.withTypes(pt, captured)

		if captured != Empty {
			s.lift(them, captured, to)
			s.pos.incrementStand(us, captured.Demote())
		}
		s.lift(us, pt, from)
		if m.IsPromotion() {
			pt = pt.Promote()
		}
		s.place(us, pt, to)
	}

	top.move = m
	s.boardHash ^= zobristWhiteToMove
	s.pos.SideToMove = them

	entry := stepEntry{boardHash: s.boardHash, stands: s.pos.Stands}
	entry.checkers = s.stepCheckers(them)
	entry.defenders[us] = s.computeDefenders(us, nil)
	entry.defenders[them] = s.computeDefenders(them, &entry.checkers)

	entry.checkCount[them] = top.checkCount[them]
	if entry.checkers.Any() {
		entry.checkCount[us] = top.checkCount[us] + 1
	}

	s.history = append(s.history, entry)
}

// UndoMove retracts the last move and returns it. The cached checkers and
// defenders of the previous ply become current again. Undoing past the
// initial position panics.
func (s *State) UndoMove() Move32 {
	if len(s.history) <= 1 {
		panic("board: undo past the initial position")
	}

	s.history = s.history[:len(s.history)-1]
	top := &s.history[len(s.history)-1]
	m := top.move
	top.move = MoveNone

	them := s.pos.SideToMove
	us := them.Other()
	s.pos.SideToMove = us

	to := m.To()
	if m.IsDrop() {
		pt := m.DropType()
		s.lift(us, pt, to)
		s.pos.incrementStand(us, pt)
	} else {
		pt := m.PieceType()
		moved := pt
		if m.IsPromotion() {
			moved = pt.Promote()
		}
		s.lift(us, moved, to)
		s.place(us, pt, m.From())

		if captured := m.CaptureType(); captured != Empty {
			s.place(them, captured, to)
			s.pos.decrementStand(us, captured.Demote())
		}
	}

	s.boardHash ^= zobristWhiteToMove
	return m
}

// Clone returns a deep copy sharing nothing with s.
func (s *State) Clone() *State {
	c := *s
	c.history = make([]stepEntry, len(s.history), cap(s.history))
	copy(c.history, s.history)
	return &c
}

// stepCheckers returns the opposing pieces that attack king's square with a
// single step. Sliding checks are added by computeDefenders.
func (s *State) stepCheckers(king Color) Bitboard {
	ksq := s.kingSq[king]
	if ksq == NoSquare {
		return EmptyBB
	}

	bb := pawnAttacks[king][ksq].And(s.typeBB[Pawn])
	bb = bb.Or(knightAttacks[king][ksq].And(s.typeBB[Knight]))
	bb = bb.Or(silverAttacks[king][ksq].And(s.typeBB[Silver]))
	bb = bb.Or(goldAttacks[king][ksq].And(s.goldsBB()))
	bb = bb.Or(kingAttacks[ksq].And(s.typeBB[ProBishop].Or(s.typeBB[ProRook])))

	return bb.And(s.colorBB[king.Other()])
}

// computeDefenders returns the pieces that are the only blocker between
// king and an opposing slider. A slider with nothing in between is checking
// the king and, if checkers is non-nil, is added to it.
func (s *State) computeDefenders(king Color, checkers *Bitboard) Bitboard {
	ksq := s.kingSq[king]
	if ksq == NoSquare {
		return EmptyBB
	}

	snipers := s.typeBB[Lance].And(forwardBB[king][ksq])
	snipers = snipers.Or(s.typeBB[Bishop].Or(s.typeBB[ProBishop]).And(diagBB[ksq]))
	snipers = snipers.Or(s.typeBB[Rook].Or(s.typeBB[ProRook]).And(crossBB[ksq]))
	snipers = snipers.And(s.colorBB[king.Other()])

	occupied := s.Occupied()
	var defenders Bitboard

	for snipers.Any() {
		sq := snipers.PopLSB()
		blockers := betweenBB[sq][ksq].And(occupied)
		switch {
		case blockers.IsZero():
			if checkers != nil {
				*checkers = checkers.Set(sq)
			}
		case !blockers.MoreThanOne():
			defenders = defenders.Or(blockers)
		}
	}

	return defenders
}

func (s *State) goldsBB() Bitboard {
	return s.typeBB[Gold].Or(s.typeBB[ProPawn]).Or(s.typeBB[ProLance]).
		Or(s.typeBB[ProKnight]).Or(s.typeBB[ProSilver])
}

// Position returns a copy of the current position.
func (s *State) Position() Position {
	return s.pos
}

// InitialPosition returns the position the state was built from.
func (s *State) InitialPosition() Position {
	return s.initial
}

// Config returns the game settings.
func (s *State) Config() StateConfig {
	return s.config
}

// SetConfig replaces the game settings.
func (s *State) SetConfig(cfg StateConfig) {
	s.config = cfg
}

// SideToMove returns the color to move.
func (s *State) SideToMove() Color {
	return s.pos.SideToMove
}

// PieceOn returns the piece at the given square.
func (s *State) PieceOn(sq Square) Piece {
	return s.pos.Board[sq]
}

// Stand returns the stand of color c.
func (s *State) Stand(c Color) Stand {
	return s.pos.Stands[c]
}

// ColorBB returns every square occupied by color c.
func (s *State) ColorBB(c Color) Bitboard {
	return s.colorBB[c]
}

// TypeBB returns every square holding a piece of type pt, of either color.
func (s *State) TypeBB(pt PieceType) Bitboard {
	return s.typeBB[pt]
}

// PieceBB returns the squares holding c's pieces of type pt.
func (s *State) PieceBB(c Color, pt PieceType) Bitboard {
	return s.colorBB[c].And(s.typeBB[pt])
}

// Occupied returns every occupied square.
func (s *State) Occupied() Bitboard {
	return s.colorBB[Black].Or(s.colorBB[White])
}

// KingSquare returns c's king square, or NoSquare if c has no king.
func (s *State) KingSquare(c Color) Square {
	return s.kingSq[c]
}

// Checkers returns the pieces giving check to the side to move.
func (s *State) Checkers() Bitboard {
	return s.history[len(s.history)-1].checkers
}

// InCheck returns true if the side to move is in check.
func (s *State) InCheck() bool {
	return s.Checkers().Any()
}

// Defenders returns the pieces, of either color, that alone block an opposing
// slider from c's king.
func (s *State) Defenders(c Color) Bitboard {
	return s.history[len(s.history)-1].defenders[c]
}

// CheckCount returns how many consecutive moves c has given check with.
func (s *State) CheckCount(c Color) int {
	return int(s.history[len(s.history)-1].checkCount[c])
}

// BoardHash returns the hash of the board and side to move, stands excluded.
func (s *State) BoardHash() uint64 {
	return s.boardHash
}

// Hash returns the full position hash including both stands.
func (s *State) Hash() uint64 {
	return s.boardHash ^ standHash(s.pos.Stands)
}

// Ply returns the number of moves played since the state was built, plus the
// position's ply offset if withOffset is set.
func (s *State) Ply(withOffset bool) int {
	ply := len(s.history) - 1
	if withOffset {
		ply += int(s.initial.PlyOffset)
	}
	return ply
}

// IsOverMaxPly returns true if the configured ply limit has been reached.
func (s *State) IsOverMaxPly() bool {
	return s.config.MaxPly > 0 && s.Ply(true) >= s.config.MaxPly
}

// HistoryMove returns the move played at the given ply (0-based, without
// offset), or MoveNone if out of range.
func (s *State) HistoryMove(ply int) Move32 {
	if ply < 0 || ply >= len(s.history)-1 {
		return MoveNone
	}
	return s.history[ply].move
}

// LastMove returns the most recent move, or MoveNone at the initial position.
func (s *State) LastMove() Move32 {
	return s.HistoryMove(len(s.history) - 2)
}

// Moves returns every move played since the initial position.
func (s *State) Moves() []Move32 {
	moves := make([]Move32, 0, len(s.history)-1)
	for i := 0; i < len(s.history)-1; i++ {
		moves = append(moves, s.history[i].move)
	}
	return moves
}

// Move32FromMove16 restores the piece and capture types of a compact move
// from the current board.
func (s *State) Move32FromMove16(m Move16) Move32 {
	if m.IsDrop() {
		return NewDropMove(m.To(), m.DropType())
	}

	from, to := m.From(), m.To()
	pt := s.pos.Board[from].Type()
	captured := s.pos.Board[to].Type()

	if m.IsPromotion() {
		return NewPromotingMove(from, to, pt, captured)
	}
	return NewBoardMove(from, to, pt, captured)
}

// AttackersTo returns the pieces of color by that attack sq under the given
// occupancy.
func (s *State) AttackersTo(sq Square, by Color, occupied Bitboard) Bitboard {
	def := by.Other()

	bb := pawnAttacks[def][sq].And(s.typeBB[Pawn])
	bb = bb.Or(knightAttacks[def][sq].And(s.typeBB[Knight]))
	bb = bb.Or(silverAttacks[def][sq].And(s.typeBB[Silver]))
	bb = bb.Or(goldAttacks[def][sq].And(s.goldsBB()))
	bb = bb.Or(kingAttacks[sq].And(s.typeBB[King].Or(s.typeBB[ProBishop]).Or(s.typeBB[ProRook])))
	bb = bb.Or(LanceAttacks(def, sq, occupied).And(s.typeBB[Lance]))
	bb = bb.Or(BishopAttacks(sq, occupied).And(s.typeBB[Bishop].Or(s.typeBB[ProBishop])))
	bb = bb.Or(RookAttacks(sq, occupied).And(s.typeBB[Rook].Or(s.typeBB[ProRook])))

	return bb.And(s.colorBB[by]).And(occupied)
}

// IsAttacked returns true if color by attacks sq. The piece on exclude, if
// any, is treated as absent; pass NoSquare to exclude nothing.
func (s *State) IsAttacked(sq Square, by Color, exclude Square) bool {
	occupied := s.Occupied().Clear(exclude)
	return s.AttackersTo(sq, by, occupied).Any()
}

// IsSuicideMove returns true if the move would leave the mover's own king
// attacked. Drops never do, since a drop cannot uncover a line.
func (s *State) IsSuicideMove(m Move32) bool {
	us := s.pos.SideToMove
	ksq := s.kingSq[us]
	if m.IsDrop() || ksq == NoSquare {
		return false
	}

	from, to := m.From(), m.To()
	if from == ksq {
		return s.IsAttacked(to, us.Other(), from)
	}
	if s.Defenders(us).IsSet(from) {
		return !lineBB[ksq][from].IsSet(to)
	}
	return false
}

// StepAttackBB returns every square c attacks with a single step, ignoring
// the piece on exclude (NoSquare to ignore nothing).
func (s *State) StepAttackBB(c Color, exclude Square) Bitboard {
	own := s.colorBB[c].Clear(exclude)
	golds := s.goldsBB()
	kings := s.typeBB[King]

	forward := own.And(s.typeBB[Pawn].Or(s.typeBB[Silver]).Or(golds).Or(kings).Or(s.typeBB[ProBishop]))
	forwardDiag := own.And(s.typeBB[Silver].Or(golds).Or(kings).Or(s.typeBB[ProRook]))
	sideways := own.And(golds.Or(kings).Or(s.typeBB[ProBishop]))
	backward := own.And(golds.Or(kings).Or(s.typeBB[ProBishop]))
	backwardDiag := own.And(s.typeBB[Silver].Or(kings).Or(s.typeBB[ProRook]))
	knights := own.And(s.typeBB[Knight])

	fwd, fwdE, fwdW, back, backE, backW, jumpE, jumpW := North, NorthEast, NorthWest, South, SouthEast, SouthWest, NorthNorthEast, NorthNorthWest
	if c == White {
		fwd, fwdE, fwdW, back, backE, backW, jumpE, jumpW = South, SouthWest, SouthEast, North, NorthWest, NorthEast, SouthSouthWest, SouthSouthEast
	}

	bb := forward.Shift(fwd)
	bb = bb.Or(forwardDiag.Shift(fwdE)).Or(forwardDiag.Shift(fwdW))
	bb = bb.Or(sideways.Shift(West)).Or(sideways.Shift(East))
	bb = bb.Or(backward.Shift(back))
	bb = bb.Or(backwardDiag.Shift(backE)).Or(backwardDiag.Shift(backW))
	bb = bb.Or(knights.Shift(jumpE)).Or(knights.Shift(jumpW))
	return bb
}

// AttackBB returns every square c attacks, sliders included.
func (s *State) AttackBB(c Color) Bitboard {
	bb := s.StepAttackBB(c, NoSquare)
	occupied := s.Occupied()

	sliders := s.colorBB[c].And(s.typeBB[Lance].Or(s.typeBB[Bishop]).Or(s.typeBB[Rook]).
		Or(s.typeBB[ProBishop]).Or(s.typeBB[ProRook]))
	sliders.ForEach(func(sq Square) {
		bb = bb.Or(Attacks(c, s.pos.Board[sq].Type(), sq, occupied))
	})
	return bb
}
