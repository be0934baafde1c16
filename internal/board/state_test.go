package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func mustState(t *testing.T, sfen string) *State {
	t.Helper()
	s, err := NewStateFromSFEN(sfen)
	require.NoError(t, err, sfen)
	return s
}

// requireConsistent rebuilds a state from scratch and compares every derived
// structure with the incrementally maintained one.
func requireConsistent(t *testing.T, s *State) {
	t.Helper()
	fresh := NewState(s.Position())

	require.Equal(t, fresh.colorBB, s.colorBB, "color bitboards")
	require.Equal(t, fresh.typeBB, s.typeBB, "type bitboards")
	require.Equal(t, fresh.kingSq, s.kingSq, "king squares")
	require.Equal(t, fresh.BoardHash(), s.BoardHash(), "board hash")
	require.Equal(t, fresh.Hash(), s.Hash(), "hash")
	require.Equal(t, fresh.Checkers(), s.Checkers(), "checkers")
	require.Equal(t, fresh.Defenders(Black), s.Defenders(Black), "black defenders")
	require.Equal(t, fresh.Defenders(White), s.Defenders(White), "white defenders")
}

func TestDoAndUndo(t *testing.T) {
	tests := []struct {
		sfen string
		move string
	}{
		{"lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL b - 1", "8h2b+"},
		{"lnsgkg1nl/1r5s1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL b Bb 1", "B*4e"},
		{"lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 1", "3a2b"},
	}

	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			s := mustState(t, tc.sfen)
			before := s.Position()
			hash := s.Hash()

			m, err := s.ParseMove(tc.move)
			require.NoError(t, err)
			require.True(t, s.IsLegal(m), "%v should be legal", m)

			s.DoMove(m)
			assert.NotEqual(t, hash, s.Hash())
			requireConsistent(t, s)
			assert.Equal(t, m.Move16(), s.LastMove().Move16())

			undone := s.UndoMove()
			assert.Equal(t, m.Move16(), undone.Move16())
			assert.Equal(t, before, s.Position())
			assert.Equal(t, hash, s.Hash())
			assert.Equal(t, 0, s.Ply(false))
			requireConsistent(t, s)
		})
	}
}

func TestCaptureGoesToStand(t *testing.T) {
	s := mustState(t, "lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 1 moves 3a2b")
	assert.Equal(t, 1, s.Stand(White).Count(Bishop))
	assert.Equal(t, NewPiece(White, Silver), s.PieceOn(Sq2B))
	assert.Equal(t, Bishop, s.LastMove().CaptureType().Demote())
	assert.Equal(t, ProBishop, s.LastMove().CaptureType())
}

func TestRandomPlayoutsStayConsistent(t *testing.T) {
	rng := frand.NewCustom(make([]byte, 32), 1024, 12)
	games := 40
	if testing.Short() {
		games = 5
	}

	for g := 0; g < games; g++ {
		s := NewState(StartPosition())
		initial := s.Position()
		initialHash := s.Hash()

		for ply := 0; ply < 160; ply++ {
			moves := s.GenerateLegalMoves()
			if moves.Len() == 0 {
				break
			}
			for _, m := range moves.Slice() {
				require.Equal(t, m, s.Move32FromMove16(m.Move16()), "restoring %v", m)
				require.False(t, s.IsSuicideMove(m), "%v leaves the king in check", m)
			}

			m := moves.Get(rng.Intn(moves.Len()))
			s.DoMove(m)
			requireConsistent(t, s)
		}

		for s.Ply(false) > 0 {
			s.UndoMove()
		}
		require.Equal(t, initial, s.Position())
		require.Equal(t, initialHash, s.Hash())
		requireConsistent(t, s)
	}
}

func TestLegalMovesNeverLeaveKingAttacked(t *testing.T) {
	rng := frand.NewCustom([]byte("0123456789abcdef0123456789abcdef"), 1024, 12)
	s := NewState(StartPosition())

	for ply := 0; ply < 300; ply++ {
		moves := s.GenerateLegalMoves()
		if moves.Len() == 0 {
			break
		}
		for _, m := range moves.Slice() {
			us := s.SideToMove()
			s.DoMove(m)
			ksq := s.KingSquare(us)
			require.False(t, s.AttackersTo(ksq, us.Other(), s.Occupied()).Any(),
				"%v left the %v king attacked", m, us)
			s.UndoMove()
		}
		s.DoMove(moves.Get(rng.Intn(moves.Len())))
	}
}

func TestDefenders(t *testing.T) {
	s := mustState(t, "9/9/KP6r/9/9/9/9/9/9 b - 1")
	assert.Equal(t, SquareBB(Sq8C), s.Defenders(Black))
	assert.True(t, s.Defenders(White).IsZero(), "white has no king")
	assert.False(t, s.InCheck())

	s = mustState(t, "9/9/KPP5r/9/9/9/9/9/9 b - 1")
	assert.True(t, s.Defenders(Black).IsZero())

	// An opposing piece can be the single blocker too.
	s = mustState(t, "9/9/Kp6r/9/9/9/9/9/9 b - 1")
	assert.Equal(t, SquareBB(Sq8C), s.Defenders(Black))

	// Nothing in between: the rook is a checker instead.
	s = mustState(t, "9/9/K7r/9/9/9/9/9/9 b - 1")
	assert.True(t, s.Defenders(Black).IsZero())
	assert.Equal(t, SquareBB(Sq1C), s.Checkers())
}

func TestPinnedPieceMoves(t *testing.T) {
	// The pawn on 8c shields the king from the rook and cannot leave the rank.
	s := mustState(t, "9/9/KP6r/9/9/9/9/9/9 b - 1")
	m, err := s.ParseMove("8c8b")
	require.NoError(t, err)
	assert.True(t, s.IsSuicideMove(m))
	assert.False(t, s.GenerateLegalMoves().Contains(m))
}

func TestCheckersAndCheckCount(t *testing.T) {
	s := mustState(t, "2k6/9/KR7/9/9/9/9/9/9 b - 1")
	assert.False(t, s.InCheck())

	m, err := s.ParseMove("8c7c")
	require.NoError(t, err)
	s.DoMove(m)
	assert.True(t, s.InCheck())
	assert.Equal(t, SquareBB(Sq7C), s.Checkers())
	assert.Equal(t, 1, s.CheckCount(Black))
	assert.Equal(t, 0, s.CheckCount(White))

	s.UndoMove()
	assert.False(t, s.InCheck())
	assert.Equal(t, 0, s.CheckCount(Black))
}

func TestPlyOffset(t *testing.T) {
	s := mustState(t, "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 100")
	assert.Equal(t, 99, s.Ply(true))
	assert.Equal(t, 0, s.Ply(false))

	s = NewStateWithPly(StartPosition(), 100)
	assert.Equal(t, 100, s.Ply(true))

	s.SetConfig(StateConfig{MaxPly: 101})
	assert.False(t, s.IsOverMaxPly())
	s.DoMove(s.GenerateLegalMoves().Get(0))
	assert.True(t, s.IsOverMaxPly())
}

func TestHistoryAccessors(t *testing.T) {
	s := mustState(t, "startpos moves 7g7f 3c3d")
	moves := s.Moves()
	require.Len(t, moves, 2)
	assert.Equal(t, "7g7f", s.HistoryMove(0).String())
	assert.Equal(t, "3c3d", s.HistoryMove(1).String())
	assert.Equal(t, MoveNone, s.HistoryMove(2))
	assert.Equal(t, MoveNone, s.HistoryMove(-1))
	assert.Equal(t, StartPosition(), s.InitialPosition())
}

func TestClone(t *testing.T) {
	s := mustState(t, "startpos moves 7g7f")
	c := s.Clone()
	c.DoMove(c.GenerateLegalMoves().Get(0))
	assert.Equal(t, 1, s.Ply(false))
	assert.Equal(t, 2, c.Ply(false))
	requireConsistent(t, s)
}

func TestHashIncludesStands(t *testing.T) {
	a := mustState(t, "4k4/9/9/9/9/9/9/9/4K4 b P 1")
	b := mustState(t, "4k4/9/9/9/9/9/9/9/4K4 b p 1")
	assert.Equal(t, a.BoardHash(), b.BoardHash())
	assert.NotEqual(t, a.Hash(), b.Hash())

	w := mustState(t, "4k4/9/9/9/9/9/9/9/4K4 w P 1")
	assert.Equal(t, a.BoardHash()^1, w.BoardHash())
}

func TestDoMovePanicsOnInapplicableMove(t *testing.T) {
	tests := []struct {
		name string
		sfen string
		move Move32
	}{
		{"foreign piece", "startpos", NewBoardMove(Sq7C, Sq7D, Pawn, Empty)},
		{"empty origin", "startpos", NewBoardMove(Sq5E, Sq5D, Pawn, Empty)},
		{"onto own piece", "startpos", NewBoardMove(Sq2H, Sq2G, Rook, Empty)},
		{"resign sentinel", "startpos", MoveNone},
		{"win sentinel", "startpos", MoveWin},
		{"drop onto occupied square", "4k4/9/9/9/9/9/9/9/4K4 b P 1", NewDropMove(Sq5I, Pawn)},
		{"drop of piece not in hand", "4k4/9/9/9/9/9/9/9/4K4 b P 1", NewDropMove(Sq5E, Rook)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, tc.sfen)
			before := s.Position()
			hash := s.Hash()

			assert.Panics(t, func() { s.DoMove(tc.move) })
			assert.Equal(t, before, s.Position())
			assert.Equal(t, hash, s.Hash())
			assert.Equal(t, 0, s.Ply(false))
			requireConsistent(t, s)
		})
	}

	assert.Panics(t, func() {
		NewState(StartPosition()).UndoMove()
	})
}

func TestAttackQueries(t *testing.T) {
	s := NewState(StartPosition())
	// 7f is covered by the pawn on 7g only.
	assert.True(t, s.IsAttacked(Sq7F, Black, NoSquare))
	assert.False(t, s.IsAttacked(Sq7F, White, NoSquare))
	assert.Equal(t, SquareBB(Sq7G), s.AttackersTo(Sq7F, Black, s.Occupied()))

	step := s.StepAttackBB(Black, NoSquare)
	assert.True(t, step.IsSet(Sq5F))
	assert.False(t, step.IsSet(Sq5E))
	assert.True(t, s.AttackBB(Black).IsSet(Sq9H), "lance covers 9h")
}
