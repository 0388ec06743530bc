package search

import (
	"testing"
	"time"

	"github.com/joergoster/Smallbrain/internal/board"
)

func TestScoreText(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "cp 0"},
		{-85, "cp -85"},
		{ValueMate - 1, "mate 1"},
		{ValueMate - 3, "mate 2"},
		{ValueMate - 5, "mate 3"},
		{-ValueMate, "mate 0"},
		{-ValueMate + 2, "mate -1"},
		{-ValueMate + 4, "mate -2"},
		{ValueMateInMaxPly - 1, "cp 31879"},
	}
	for _, tc := range cases {
		if got := ScoreText(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

func TestMateScoresAreStoredPlyRelative(t *testing.T) {
	score := mateIn(7)
	stored := ScoreToTT(score, 4)
	if stored != mateIn(3) {
		t.Fatalf("expected mate distance from the node, got %d", stored)
	}
	if got := ScoreFromTT(stored, 4); got != score {
		t.Fatalf("expected round trip to %d, got %d", score, got)
	}
	if got := ScoreFromTT(ScoreToTT(-250, 9), 9); got != -250 {
		t.Fatalf("expected plain scores untouched, got %d", got)
	}
}

func TestInfoString(t *testing.T) {
	e2e4 := board.NewMove(board.SquareOf(4, 1), board.SquareOf(4, 3))
	e7e5 := board.NewMove(board.SquareOf(4, 6), board.SquareOf(4, 4))
	info := Info{
		Depth:    5,
		SelDepth: 8,
		Score:    31,
		Nodes:    1000,
		Time:     500 * time.Millisecond,
		Hashfull: 12,
		PV:       []board.Move{e2e4, e7e5},
	}
	want := "info depth 5 seldepth 8 score cp 31 nodes 1000 nps 2000 tbhits 0 time 500 hashfull 12 pv e2e4 e7e5"
	if got := info.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestReductionTableGuard(t *testing.T) {
	if reduction(lmrMinMoves, 10) != 0 || reduction(10, 2) != 0 {
		t.Fatalf("expected no reduction before the move and depth thresholds")
	}
	if reductions[1][30] != 1 {
		t.Fatalf("expected ln(1) row to hold the base reduction, got %d", reductions[1][30])
	}
	if reductions[0][30] != 0 {
		t.Fatalf("expected zero-move row to stay empty")
	}
	if reduction(20, 10) <= reduction(4, 10) {
		t.Fatalf("expected later moves to be reduced more")
	}
}
