package search

import (
	"testing"

	"github.com/joergoster/Smallbrain/internal/board"
)

func TestStageTransitions(t *testing.T) {
	if transition(stageGenerate) != stagePickNext {
		t.Fatalf("expected generate to lead to pick-next")
	}
	if transition(stagePickNext) != stageDone || transition(stageDone) != stageDone {
		t.Fatalf("expected pick-next to end in done")
	}
}

func TestTTMoveComesFirst(t *testing.T) {
	w := newTestWorker(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", Options{})
	ttMove := mustMove(t, w.pos, "a2a3")
	capture := mustMove(t, w.pos, "e4d5")

	mp := newMainPicker(w, &w.lists[0], 0, ttMove)
	if got := mp.Next(); got != ttMove {
		t.Fatalf("expected tt move first, got %s", got)
	}
	if got := mp.Next(); got != capture {
		t.Fatalf("expected the capture second, got %s", got)
	}
	seen := 2
	for m := mp.Next(); m != board.NoMove; m = mp.Next() {
		seen++
	}
	if seen != 31 {
		t.Fatalf("expected all 31 legal moves, got %d", seen)
	}
	if mp.stage != stageDone {
		t.Fatalf("expected picker to finish in the done stage")
	}
}

func TestKillersOrderAheadOfQuiets(t *testing.T) {
	w := newTestWorker(t, board.StartFEN, Options{})
	k1 := mustMove(t, w.pos, "h2h3")
	k2 := mustMove(t, w.pos, "a2a3")
	w.hist.storeKiller(1, k2)
	w.hist.storeKiller(1, k1)

	mp := newMainPicker(w, &w.lists[1], 1, board.NoMove)
	if got := mp.Next(); got != k1 {
		t.Fatalf("expected first killer, got %s", got)
	}
	if got := mp.Next(); got != k2 {
		t.Fatalf("expected second killer, got %s", got)
	}
}

func TestCaptureKillerCounterOrdering(t *testing.T) {
	w := newTestWorker(t, "4k3/p7/1p6/3p4/8/2N5/8/1Q2K3 w - - 0 1", Options{})
	goodCapture := mustMove(t, w.pos, "c3d5")
	losingCapture := mustMove(t, w.pos, "b1b6")
	k1 := mustMove(t, w.pos, "c3e4")
	k2 := mustMove(t, w.pos, "b1a2")
	counter := mustMove(t, w.pos, "c3b5")
	historyQuiet := mustMove(t, w.pos, "e1e2")

	prev := board.NewMove(board.SquareOf(4, 6), board.SquareOf(4, 4))
	w.stack[0] = stackEntry{move: prev, piece: board.MakePiece(board.Black, board.Pawn)}
	w.hist.storeKiller(1, k2)
	w.hist.storeKiller(1, k1)
	w.hist.counter[prev.From()][prev.To()] = counter
	w.hist.main[board.White][historyQuiet.From()][historyQuiet.To()] = 500

	want := []board.Move{goodCapture, k1, k2, counter, historyQuiet, losingCapture}
	mp := newMainPicker(w, &w.lists[1], 1, board.NoMove)
	for i, expected := range want {
		if got := mp.Next(); got != expected {
			t.Fatalf("expected %s at position %d, got %s", expected, i, got)
		}
	}
}

func TestQuiescencePickerOnlyCaptures(t *testing.T) {
	w := newTestWorker(t, "4k3/8/2q1r3/3P4/8/8/8/K7 w - - 0 1", Options{})
	mp := newQuiescencePicker(w, &w.lists[0], 0)
	first := mp.Next()
	if first != mustMove(t, w.pos, "d5c6") {
		t.Fatalf("expected the queen capture first, got %s", first)
	}
	second := mp.Next()
	if second != mustMove(t, w.pos, "d5e6") {
		t.Fatalf("expected the rook capture second, got %s", second)
	}
	if m := mp.Next(); m != board.NoMove {
		t.Fatalf("expected no quiet moves in quiescence, got %s", m)
	}
}

func TestRootPickerUsesRestrictedList(t *testing.T) {
	pos := board.StartPosition()
	allowed := []board.Move{mustMove(t, pos, "g1f3"), mustMove(t, pos, "b1c3")}
	w := newTestWorker(t, board.StartFEN, Options{SearchMoves: allowed})
	mp := newRootPicker(w, &w.rootMoves, allowed[1])
	if mp.stage != stagePickNext {
		t.Fatalf("expected root picker to skip generation")
	}
	if got := mp.Next(); got != allowed[1] {
		t.Fatalf("expected hinted root move first, got %s", got)
	}
	if got := mp.Next(); got != allowed[0] {
		t.Fatalf("expected remaining restricted move, got %s", got)
	}
	if got := mp.Next(); got != board.NoMove {
		t.Fatalf("expected unrestricted moves to be excluded, got %s", got)
	}
}

func TestHistoryUpdate(t *testing.T) {
	h := NewHistory()
	best := board.NewMove(board.SquareOf(6, 0), board.SquareOf(5, 2))
	worse := board.NewMove(board.SquareOf(0, 1), board.SquareOf(0, 2))
	prev := [2]contKey{{piece: board.MakePiece(board.Black, board.Pawn), to: board.SquareOf(4, 4)}, {piece: board.NoPiece}}
	prevMove := board.NewMove(board.SquareOf(4, 6), board.SquareOf(4, 4))
	knight := board.MakePiece(board.White, board.Knight)
	pawn := board.MakePiece(board.White, board.Pawn)

	h.update(board.White, 3, 4, best, knight, []board.Move{worse}, []board.Piece{pawn}, prev, prevMove)

	if h.Main(board.White, best) != 16 || h.Main(board.White, worse) != -16 {
		t.Fatalf("unexpected history %d / %d", h.Main(board.White, best), h.Main(board.White, worse))
	}
	if h.Cont(prev[0].piece, prev[0].to, knight, best.To()) != 16 {
		t.Fatalf("expected continuation history bonus")
	}
	if h.Killers(3)[0] != best || h.Counter(prevMove) != best {
		t.Fatalf("expected killer and counter to record the cutoff move")
	}
}
