package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rookShuffle = "startpos moves 2h3h 8b7b 3h2h 7b8b"
	kingAndRook = "2k6/9/KR7/9/9/9/9/9/9 b - 1 moves"
	rookChases  = "9/9/9/9/9/9/1rk6/9/K8 w - 1 moves 8g9g 9i8i 9g8g 8i9i"
)

func TestRepetitionStatus(t *testing.T) {
	tests := []struct {
		name string
		sfen string
		want RepetitionStatus
	}{
		{"start", "startpos", NoRepetition},
		{"rook shuffle", rookShuffle, Repetition},
		{"perpetual check by opponent", kingAndRook + " 8c7c 7a8a 7c8c 8a7a 8c7c", WinRepetition},
		{"perpetual check by mover", kingAndRook + " 8c7c 7a8a 7c8c 8a7a", LossRepetition},
		{"white checks, black to move", rookChases + " 8g9g", WinRepetition},
		{"white checks, white to move", rookChases, LossRepetition},
		{"chain broken", rookChases + " 8g8a", NoRepetition},
		{
			"inferior stand",
			"l3k2Bl/1r1sg4/1l1pps2p/2P1np3/1P4p2/2G1RP1N1/+p1KPP3P/3S5/1+n2G2+bL b GPsn5p 1 moves G*4a 5a6a 4a5a 6a5a",
			InferiorRepetition,
		},
		{
			"superior stand",
			"+Bn1g1g2l/2s1ks3/p1Ppppn1p/2+BP3r1/2pN5/1p4ppP/P2gPP3/8K/L5GNL w RL2s3p 1 moves S*2g 1h1g 2g1h+ 1g1h S*2g",
			SuperiorRepetition,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, tc.sfen)
			assert.Equal(t, tc.want, s.RepetitionStatus(false))
		})
	}
}

func TestRepetitionStatusStrict(t *testing.T) {
	cycle := " 8c7c 7a8a 7c8c 8a7a"

	tests := []struct {
		name string
		sfen string
		want RepetitionStatus
	}{
		{"one shuffle", rookShuffle, NoRepetition},
		{"two shuffles", rookShuffle + " 2h3h 8b7b 3h2h 7b8b", NoRepetition},
		{"three shuffles", rookShuffle + " 2h3h 8b7b 3h2h 7b8b 2h3h 8b7b 3h2h 7b8b", Repetition},
		{"short perpetual", kingAndRook + cycle + " 8c7c", NoRepetition},
		{"broken chase", kingAndRook + cycle + " 8c7c 7a8a 7c8c 8a4a 8c7c", NoRepetition},
		{"long perpetual", kingAndRook + cycle + cycle + cycle + " 8c7c", WinRepetition},
		{"one cycle", kingAndRook + cycle, NoRepetition},
		{"two cycles", kingAndRook + cycle + cycle, NoRepetition},
		{"three cycles", kingAndRook + cycle + cycle + cycle, LossRepetition},
		{
			"inferior stand",
			"l3k2Bl/1r1sg4/1l1pps2p/2P1np3/1P4p2/2G1RP1N1/+p1KPP3P/3S5/1+n2G2+bL b GPsn5p 1 moves G*4a 5a6a 4a5a 6a5a",
			InferiorRepetition,
		},
		{
			"superior stand",
			"+Bn1g1g2l/2s1ks3/p1Ppppn1p/2+BP3r1/2pN5/1p4ppP/P2gPP3/8K/L5GNL w RL2s3p 1 moves S*2g 1h1g 2g1h+ 1g1h S*2g",
			SuperiorRepetition,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, tc.sfen)
			assert.Equal(t, tc.want, s.RepetitionStatus(true))
		})
	}
}

func TestRepetitionAfterUndo(t *testing.T) {
	s := mustState(t, kingAndRook+" 8c7c 7a8a 7c8c 8a7a 8c7c")
	require.Equal(t, WinRepetition, s.RepetitionStatus(false))

	s.UndoMove()
	s.UndoMove()
	assert.Equal(t, NoRepetition, s.RepetitionStatus(false))

	m, err := s.ParseMove("8a7a")
	require.NoError(t, err)
	s.DoMove(m)
	m, err = s.ParseMove("8c7c")
	require.NoError(t, err)
	s.DoMove(m)
	assert.Equal(t, WinRepetition, s.RepetitionStatus(false))
}

func TestRepetitionStatusString(t *testing.T) {
	assert.Equal(t, "WinRepetition", WinRepetition.String())
	assert.Equal(t, "NoRepetition", NoRepetition.String())
	assert.Equal(t, "Unknown", RepetitionStatus(99).String())
}
