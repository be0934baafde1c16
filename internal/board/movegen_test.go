package board

import "testing"

// perft counts the number of leaf nodes at the given depth.
func perft(s *State, depth int) int64 {
	moves := s.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for _, m := range moves.Slice() {
		s.DoMove(m)
		nodes += perft(s, depth-1)
		s.UndoMove()
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 30},
		{2, 900},
		{3, 25470},
		{4, 719731},
	}

	for _, tc := range tests {
		if tc.depth >= 4 && testing.Short() {
			t.Skip("skipping depth 4 in short mode")
		}
		s := NewState(StartPosition())
		got := perft(s, tc.depth)
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

func TestCheckmate(t *testing.T) {
	// Gold on 5b backed by the gold on 5c.
	s, err := NewStateFromSFEN("4k4/4G4/4G4/9/9/9/9/9/4K4 w - 1")
	if err != nil {
		t.Fatal(err)
	}

	if !s.InCheck() {
		t.Fatal("white should be in check")
	}
	if moves := s.GenerateLegalMoves(); moves.Len() != 0 {
		t.Errorf("expected no legal moves, got %v", moves.Slice())
	}
	if !s.IsCheckmated() {
		t.Error("expected checkmate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// The king can take the unprotected gold.
	s, err := NewStateFromSFEN("4k4/4G4/9/9/9/9/9/9/4K4 w - 1")
	if err != nil {
		t.Fatal(err)
	}

	if !s.InCheck() {
		t.Fatal("white should be in check")
	}
	if s.IsCheckmated() {
		t.Error("king can capture the gold")
	}

	capture := NewBoardMove(Sq5A, Sq5B, King, Gold)
	if !s.GenerateLegalMoves().Contains(capture) {
		t.Errorf("missing %v", capture)
	}
}

func TestPawnDropMate(t *testing.T) {
	// P*1b would mate: the pawn is covered by the gold on 1c and the king is
	// boxed in by its own lance and pawn.
	s, err := NewStateFromSFEN("7lk/7p1/8G/9/9/9/9/9/4K4 b P 1")
	if err != nil {
		t.Fatal(err)
	}
	moves := s.GenerateLegalMoves()
	if moves.Contains(NewDropMove(Sq1B, Pawn)) {
		t.Error("pawn drop mate should be illegal")
	}
	if !moves.Contains(NewDropMove(Sq1D, Pawn)) {
		t.Error("P*1d should be legal")
	}

	// Without the gold the king takes the pawn, so the drop is fine.
	s, err = NewStateFromSFEN("7lk/7p1/9/9/9/9/9/9/4K4 b P 1")
	if err != nil {
		t.Fatal(err)
	}
	if !s.GenerateLegalMoves().Contains(NewDropMove(Sq1B, Pawn)) {
		t.Error("P*1b should be legal when the king can capture")
	}
}

func TestDropRestrictions(t *testing.T) {
	s, err := NewStateFromSFEN("4k4/9/9/9/9/9/P8/9/4K4 b PLN 1")
	if err != nil {
		t.Fatal(err)
	}
	moves := s.GenerateLegalMoves()

	tests := []struct {
		move  Move32
		legal bool
	}{
		{NewDropMove(Sq8E, Pawn), true},
		{NewDropMove(Sq9E, Pawn), false}, // second pawn on file 9
		{NewDropMove(Sq8A, Pawn), false}, // last rank
		{NewDropMove(Sq8A, Lance), false},
		{NewDropMove(Sq8B, Lance), true},
		{NewDropMove(Sq8B, Knight), false},
		{NewDropMove(Sq8C, Knight), true},
		{NewDropMove(Sq5A, Pawn), false}, // occupied
	}

	for _, tc := range tests {
		if got := moves.Contains(tc.move); got != tc.legal {
			t.Errorf("%v: legal = %v, want %v", tc.move, got, tc.legal)
		}
	}
}

func TestPromotionChoices(t *testing.T) {
	// Black pawn on 5b and knight on 3d.
	s, err := NewStateFromSFEN("k8/4P4/9/6N2/9/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	moves := s.GenerateLegalMoves()

	pawnTo5a := NewBoardMove(Sq5B, Sq5A, Pawn, Empty)
	if moves.Contains(pawnTo5a) {
		t.Error("pawn may not stay unpromoted on the last rank")
	}
	if !moves.Contains(pawnTo5a | movePromoteBit) {
		t.Error("missing 5b5a+")
	}

	knightTo4b := NewBoardMove(Sq3D, Sq4B, Knight, Empty)
	if moves.Contains(knightTo4b) {
		t.Error("knight may not stay unpromoted on rank b")
	}
	if !moves.Contains(knightTo4b | movePromoteBit) {
		t.Error("missing 3d4b+")
	}
}

func TestCheckEvasions(t *testing.T) {
	// Rook on 5a checks the king on 5i; the silver can block on 5h.
	s, err := NewStateFromSFEN("4r4/9/9/9/9/9/9/3S5/4K4 b G 1")
	if err != nil {
		t.Fatal(err)
	}
	if !s.InCheck() {
		t.Fatal("black should be in check")
	}

	for _, m := range s.GenerateLegalMoves().Slice() {
		s.DoMove(m)
		ksq := s.KingSquare(Black)
		if s.AttackersTo(ksq, White, s.Occupied()).Any() {
			t.Errorf("%v does not resolve the check", m)
		}
		s.UndoMove()
	}

	if !s.GenerateLegalMoves().Contains(NewDropMove(Sq5E, Gold)) {
		t.Error("interposing drop G*5e should be legal")
	}
	if !s.GenerateLegalMoves().Contains(NewBoardMove(Sq6H, Sq5G, Silver, Empty)) {
		t.Error("blocking 6h5g should be legal")
	}
	if s.GenerateLegalMoves().Contains(NewDropMove(Sq1E, Gold)) {
		t.Error("drop away from the check line should be illegal")
	}
}

func TestIsLegalRejectsMalformedMoves(t *testing.T) {
	s, err := NewStateFromSFEN("4k4/9/9/9/9/9/9/9/4K4 b P 1")
	if err != nil {
		t.Fatal(err)
	}

	if !s.IsLegal(NewDropMove(Sq5E, Pawn)) {
		t.Error("P*5e should be legal")
	}

	tests := []struct {
		name string
		move Move32
	}{
		{"drop of a king", NewDropMove(Sq5E, King)},
		{"drop type past the stand", Move32(Sq5E) | 127<<moveFromShift},
		{"destination off the board", NewBoardMove(Sq5I, Square(NumSquares+3), King, Empty)},
		{"resign", MoveNone},
		{"win", MoveWin},
	}
	for _, tc := range tests {
		if s.IsLegal(tc.move) {
			t.Errorf("%s: IsLegal(%08x) = true, want false", tc.name, uint32(tc.move))
		}
	}
}
