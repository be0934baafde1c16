package board

// GenerateLegalMoves generates all legal moves for the side to move.
//
// Promotion is optional wherever it is allowed, except when the unpromoted
// piece could never move again. Drops that would give a second unpromoted
// pawn on a file, land on a dead square, or mate with a pawn are excluded.
func (s *State) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	s.generateMoves(ml, false)
	return ml
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (s *State) HasLegalMoves() bool {
	ml := NewMoveList()
	s.generateMoves(ml, true)
	return ml.Len() > 0
}

// IsCheckmated returns true if the side to move is in check and has no legal
// move.
func (s *State) IsCheckmated() bool {
	return s.InCheck() && !s.HasLegalMoves()
}

// IsLegal returns true if m is one of the legal moves of the position.
func (s *State) IsLegal(m Move32) bool {
	if m.IsNone() || m.IsWin() || m == MoveInvalid {
		return false
	}
	if m.IsDrop() && !isHandType(m.DropType()) || m.To() >= NumSquares {
		return false
	}
	m = s.Move32FromMove16(m.Move16())
	return s.GenerateLegalMoves().Contains(m)
}

// generateMoves fills ml with legal moves. With firstOnly set it stops after
// the first one.
func (s *State) generateMoves(ml *MoveList, firstOnly bool) {
	us := s.pos.SideToMove
	them := us.Other()
	ksq := s.kingSq[us]
	checkers := s.Checkers()
	occupied := s.Occupied()
	own := s.colorBB[us]

	done := func() bool { return firstOnly && ml.Len() > 0 }

	// King moves
	if ksq != NoSquare {
		targets := kingAttacks[ksq].AndNot(own)
		for targets.Any() {
			to := targets.PopLSB()
			if s.IsAttacked(to, them, ksq) {
				continue
			}
			ml.Add(NewBoardMove(ksq, to, King, s.pos.Board[to].Type()))
			if done() {
				return
			}
		}
	}

	if checkers.MoreThanOne() {
		return
	}

	boardTargets := own.Not()
	dropTargets := occupied.Not()
	if checkers.Any() {
		checker := checkers.LSB()
		dropTargets = betweenBB[checker][ksq]
		boardTargets = dropTargets.Or(SquareBB(checker))
	}

	// Board moves
	pieces := own
	if ksq != NoSquare {
		pieces = pieces.Clear(ksq)
	}
	for pieces.Any() {
		from := pieces.PopLSB()
		pt := s.pos.Board[from].Type()
		targets := Attacks(us, pt, from, occupied).And(boardTargets)
		for targets.Any() {
			to := targets.PopLSB()
			captured := s.pos.Board[to].Type()
			if captured == King {
				continue
			}
			m := NewBoardMove(from, to, pt, captured)
			if s.IsSuicideMove(m) {
				continue
			}
			s.addBoardMove(ml, us, m)
			if done() {
				return
			}
		}
	}

	// Drops
	st := s.pos.Stands[us]
	if st.IsEmpty() || dropTargets.IsZero() {
		return
	}
	for _, pt := range HandTypes {
		if st.Count(pt) == 0 {
			continue
		}
		targets := dropTargets.AndNot(s.deadDropSquares(us, pt))
		for targets.Any() {
			to := targets.PopLSB()
			m := NewDropMove(to, pt)
			if pt == Pawn && s.isPawnDropMate(m) {
				continue
			}
			ml.Add(m)
			if done() {
				return
			}
		}
	}
}

// addBoardMove adds m and, where allowed, its promoting form.
func (s *State) addBoardMove(ml *MoveList, us Color, m Move32) {
	pt := m.PieceType()
	from, to := m.From(), m.To()
	if pt.CanPromote() && (promotionZone[us].IsSet(from) || promotionZone[us].IsSet(to)) {
		ml.Add(m | movePromoteBit)
		if isDeadSquare(us, pt, to) {
			return
		}
	}
	ml.Add(m)
}

// deadDropSquares returns the squares where c may not drop pt: ranks the
// piece could never leave and, for pawns, files already holding c's pawn.
func (s *State) deadDropSquares(c Color, pt PieceType) Bitboard {
	far := RankA
	if c == White {
		far = RankI
	}
	next := far - 1
	if c == White {
		next = far + 1
	}

	switch pt {
	case Pawn:
		bb := rankBB[far]
		pawns := s.colorBB[c].And(s.typeBB[Pawn])
		for pawns.Any() {
			bb = bb.Or(fileBB[pawns.PopLSB().File()])
		}
		return bb
	case Lance:
		return rankBB[far]
	case Knight:
		return rankBB[far].Or(rankBB[next])
	}
	return EmptyBB
}

// isPawnDropMate returns true if dropping a pawn checkmates the opponent.
func (s *State) isPawnDropMate(m Move32) bool {
	us := s.pos.SideToMove
	them := us.Other()
	if s.kingSq[them] == NoSquare || !pawnAttacks[us][m.To()].IsSet(s.kingSq[them]) {
		return false
	}

	s.DoMove(m)
	mated := !s.HasLegalMoves()
	s.UndoMove()
	return mated
}
