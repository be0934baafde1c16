package board

// RepetitionStatus classifies a recurrence of the current position.
type RepetitionStatus uint8

const (
	NoRepetition RepetitionStatus = iota
	// Repetition: board and both stands recur without perpetual check.
	Repetition
	// WinRepetition: the opponent of the side to move has checked on every
	// move since the earlier occurrence. The side to move wins.
	WinRepetition
	// LossRepetition: the side to move has been the perpetual checker.
	LossRepetition
	// SuperiorRepetition: the board recurs and the side to move now holds at
	// least as many pieces of every type as before.
	SuperiorRepetition
	// InferiorRepetition: the board recurs and the side to move holds no more
	// pieces of any type than before.
	InferiorRepetition
)

// Under the strict reading of the official rules a perpetual check needs at
// least six consecutive checks, and sennichite is the fourth occurrence of a
// position (three earlier ones).
const (
	strictMinPerpetualChecks = 6
	strictPriorOccurrences   = 3
)

// String returns the status name.
func (r RepetitionStatus) String() string {
	switch r {
	case NoRepetition:
		return "NoRepetition"
	case Repetition:
		return "Repetition"
	case WinRepetition:
		return "WinRepetition"
	case LossRepetition:
		return "LossRepetition"
	case SuperiorRepetition:
		return "SuperiorRepetition"
	case InferiorRepetition:
		return "InferiorRepetition"
	default:
		return "Unknown"
	}
}

// RepetitionStatus scans earlier positions with the same side to move,
// nearest first, and classifies the first one whose board matches.
//
// In strict mode perpetual check also requires strictMinPerpetualChecks
// consecutive checks, and a plain repetition is only reported once the
// position has occurred strictPriorOccurrences times before.
func (s *State) RepetitionStatus(strict bool) RepetitionStatus {
	side := s.pos.SideToMove
	ply := len(s.history) - 1
	current := &s.history[ply]

	my := s.pos.Stands[side]
	op := s.pos.Stands[side.Other()]

	// Consecutive checks given by the opponent (against us) and by us.
	theirChecks := int(current.checkCount[side.Other()])
	ourChecks := int(current.checkCount[side])

	occurrences := 0
	for p := ply - 4; p >= 0; p -= 2 {
		past := &s.history[p]
		if past.boardHash != s.boardHash {
			continue
		}

		pastMy := past.stands[side]
		pastOp := past.stands[side.Other()]

		if my != pastMy || op != pastOp {
			if my.IsSuperiorOrEqual(pastMy) {
				return SuperiorRepetition
			}
			if pastMy.IsSuperiorOrEqual(my) {
				return InferiorRepetition
			}
			continue
		}

		distance := ply - p
		if perpetual(theirChecks, distance, strict) {
			return WinRepetition
		}
		if perpetual(ourChecks, distance, strict) {
			return LossRepetition
		}

		if !strict || occurrences == strictPriorOccurrences-1 {
			return Repetition
		}
		occurrences++
	}

	return NoRepetition
}

// perpetual reports whether a run of consecutive checks covers every move of
// one side over distance plies.
func perpetual(checks, distance int, strict bool) bool {
	if strict && checks < strictMinPerpetualChecks {
		return false
	}
	return checks*2 >= distance
}
