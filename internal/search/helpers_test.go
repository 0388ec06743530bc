package search

import (
	"testing"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/tt"
)

func newTestWorker(t *testing.T, fen string, opts Options) *Worker {
	t.Helper()
	pos, err := board.NewChess(fen)
	if err != nil {
		t.Fatalf("unexpected fen error: %v", err)
	}
	return NewWorker(NewShared(tt.New(4)), pos, opts)
}

func mustMove(t *testing.T, pos board.Position, uci string) board.Move {
	t.Helper()
	m, err := pos.ParseMove(uci)
	if err != nil {
		t.Fatalf("unexpected move error: %v", err)
	}
	return m
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, candidate := range moves {
		if candidate == m {
			return true
		}
	}
	return false
}
