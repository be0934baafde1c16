package board

// Entering-king declaration (the 27-point rule).
const (
	declarationMinPieces   = 10
	declarationBlackPoints = 28
	declarationWhitePoints = 27

	sliderPoints = 5
	stepPoints   = 1
)

// PieceScore counts c's material as sliderUnit per bishop or rook (promoted
// or not) and stepUnit per other piece, kings excluded. Stand pieces always
// count; board pieces count only inside c's promotion zone if onlyZone is set.
func (s *State) PieceScore(c Color, sliderUnit, stepUnit int, onlyZone bool) int {
	own := s.colorBB[c]
	sliders := own.And(s.typeBB[Bishop].Or(s.typeBB[ProBishop]).Or(s.typeBB[Rook]).Or(s.typeBB[ProRook]))
	steps := own.AndNot(s.typeBB[King]).AndNot(sliders)

	if onlyZone {
		sliders = sliders.And(promotionZone[c])
		steps = steps.And(promotionZone[c])
	}

	sliderCount := sliders.PopCount()
	stepCount := steps.PopCount()

	st := s.pos.Stands[c]
	sliderCount += st.Count(Bishop) + st.Count(Rook)
	stepCount += st.Count(Pawn) + st.Count(Lance) + st.Count(Knight) + st.Count(Silver) + st.Count(Gold)

	return sliderCount*sliderUnit + stepCount*stepUnit
}

// DeclarationScore returns c's score under the 27-point rule.
func (s *State) DeclarationScore(c Color) int {
	return s.PieceScore(c, sliderPoints, stepPoints, true)
}

// CanDeclare reports whether the side to move may claim a win by declaration:
// its king stands in the promotion zone with at least ten other own pieces,
// it is not in check, and its score reaches 28 (Black) or 27 (White).
func (s *State) CanDeclare() bool {
	c := s.pos.SideToMove
	ksq := s.kingSq[c]
	if ksq == NoSquare || !promotionZone[c].IsSet(ksq) {
		return false
	}

	entering := s.colorBB[c].AndNot(s.typeBB[King]).And(promotionZone[c])
	if entering.PopCount() < declarationMinPieces {
		return false
	}

	if s.InCheck() {
		return false
	}

	threshold := declarationBlackPoints
	if c == White {
		threshold = declarationWhitePoints
	}
	return s.DeclarationScore(c) >= threshold
}
