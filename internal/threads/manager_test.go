package threads

import (
	"testing"
	"time"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

func TestManagerBeginAndWait(t *testing.T) {
	pos, err := board.NewChess("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("unexpected fen error: %v", err)
	}
	m := NewManager(tt.New(4), pos, Config{})
	if _, ok := m.BestMove(); ok {
		t.Fatalf("expected no best move before searching")
	}

	m.Begin(2, timeman.Limits{}, 1)
	m.Wait()
	move, ok := m.BestMove()
	if !ok {
		t.Fatalf("expected best move after search")
	}
	if move.String() != "a1a8" {
		t.Fatalf("expected a1a8, got %s", move)
	}
	if m.IsSearching() {
		t.Fatalf("expected manager to be idle")
	}
}

func TestManagerBeginStopsPrior(t *testing.T) {
	m := NewManager(tt.New(4), board.StartPosition(), Config{})
	m.Begin(0, timeman.Limits{Infinite: true}, 2)
	time.Sleep(20 * time.Millisecond)
	if !m.IsSearching() {
		t.Fatalf("expected manager to be searching")
	}

	m.Begin(1, timeman.Limits{}, 1)
	result := m.Wait()
	if result.Depth != 1 {
		t.Fatalf("expected depth 1 after restart, got %d", result.Depth)
	}

	m.Stop()
	m.Stop()
	if m.IsSearching() {
		t.Fatalf("expected manager to be idle after stop")
	}
}

func TestManagerSetPositionClearsMove(t *testing.T) {
	m := NewManager(tt.New(4), board.StartPosition(), Config{})
	m.Begin(1, timeman.Limits{}, 1)
	m.Wait()
	if _, ok := m.BestMove(); !ok {
		t.Fatalf("expected best move after search")
	}

	pos, err := board.NewChess("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("unexpected fen error: %v", err)
	}
	m.SetPosition(pos)
	if _, ok := m.BestMove(); ok {
		t.Fatalf("expected best move to reset with the position")
	}
	if got := m.Position().FEN(); got != pos.FEN() {
		t.Fatalf("expected position %s, got %s", pos.FEN(), got)
	}
}
