package search

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

const (
	MaxPly = 120

	ValueDraw         = 0
	ValueMate         = 32000
	ValueInfinite     = 32001
	ValueMateInMaxPly = ValueMate - MaxPly
	ValueTBWin        = 20000
)

func mateIn(ply int) int {
	return ValueMate - ply
}

func matedIn(ply int) int {
	return -ValueMate + ply
}

// ScoreToTT makes mate scores relative to the stored node instead of the root.
func ScoreToTT(score, ply int) int {
	switch {
	case score >= ValueMateInMaxPly:
		return score + ply
	case score <= -ValueMateInMaxPly:
		return score - ply
	}
	return score
}

func ScoreFromTT(score, ply int) int {
	switch {
	case score >= ValueMateInMaxPly:
		return score - ply
	case score <= -ValueMateInMaxPly:
		return score + ply
	}
	return score
}

// ScoreText renders a score as "cp N" or "mate N". N counts full moves; it is
// positive when the side to move delivers mate and negative when it is mated.
func ScoreText(score int) string {
	switch {
	case score >= ValueMateInMaxPly:
		return fmt.Sprintf("mate %d", (ValueMate-score+1)/2)
	case score <= -ValueMateInMaxPly:
		return fmt.Sprintf("mate %d", -(ValueMate+score)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
