package eval

import (
	"testing"

	"github.com/joergoster/Smallbrain/internal/board"
)

func TestStartPositionIsBalanced(t *testing.T) {
	e := NewMaterial(DefaultWeights())
	if got := e.Evaluate(board.StartPosition()); got != tempo {
		t.Fatalf("expected only the tempo bonus, got %d", got)
	}
}

func TestEvaluationIsSideRelative(t *testing.T) {
	e := NewMaterial(DefaultWeights())
	white, err := board.NewChess("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	black, err := board.NewChess("4k3/8/8/8/8/8/8/Q3K3 b - - 0 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Evaluate(white) <= 500 {
		t.Fatalf("expected white to be clearly winning, got %d", e.Evaluate(white))
	}
	if e.Evaluate(black) >= -500 {
		t.Fatalf("expected black to be clearly losing, got %d", e.Evaluate(black))
	}
}

func TestMirroredPositionsScoreEqually(t *testing.T) {
	e := NewMaterial(DefaultWeights())
	a, _ := board.NewChess("r3k3/1p6/8/3N4/8/8/5P2/4K3 w - - 0 1")
	b, _ := board.NewChess("4k3/5p2/8/8/3n4/8/1P6/R3K3 b - - 0 1")
	if e.Evaluate(a) != e.Evaluate(b) {
		t.Fatalf("mirrored positions differ: %d vs %d", e.Evaluate(a), e.Evaluate(b))
	}
}
