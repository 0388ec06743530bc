package threads

import (
	"sync"
	"testing"
	"time"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/search"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

const italianFEN = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"

func newTestPool(t *testing.T, cfg Config) (*Pool, board.Position) {
	t.Helper()
	pos, err := board.NewChess(italianFEN)
	if err != nil {
		t.Fatalf("unexpected fen error: %v", err)
	}
	return NewPool(tt.New(8), cfg), pos
}

func isLegal(pos board.Position, m board.Move) bool {
	var list board.MoveList
	pos.GenerateMoves(board.GenAll, &list)
	return list.Contains(m)
}

func TestStopJoinsEveryWorker(t *testing.T) {
	p, pos := newTestPool(t, Config{})
	p.StartThreads(pos, timeman.Limits{Infinite: true}, nil, 4, false)
	time.Sleep(100 * time.Millisecond)
	if !p.IsSearching() {
		t.Fatalf("expected pool to be searching")
	}

	p.mu.Lock()
	p.shared.Stop.Store(true)
	p.mu.Unlock()
	before := p.Nodes()
	result := p.StopThreads()
	after := p.Nodes()

	if p.IsSearching() {
		t.Fatalf("expected pool to be idle after stop")
	}
	if extra := after - before; extra > 4*1024 {
		t.Fatalf("expected at most %d nodes after stop, got %d", 4*1024, extra)
	}
	if len(p.currentWorkers()) != 4 {
		t.Fatalf("expected 4 workers, got %d", len(p.currentWorkers()))
	}
	if !isLegal(pos, result.BestMove) {
		t.Fatalf("expected legal best move, got %s", result.BestMove)
	}
	if p.Nodes() != after {
		t.Fatalf("expected node count to settle after join")
	}
}

func TestStopThreadsIsIdempotent(t *testing.T) {
	p, pos := newTestPool(t, Config{})
	p.StopThreads()

	p.StartThreads(pos, timeman.Limits{Infinite: true}, nil, 2, false)
	time.Sleep(20 * time.Millisecond)
	first := p.StopThreads()
	second := p.StopThreads()
	if first.BestMove != second.BestMove || first.Depth != second.Depth {
		t.Fatalf("expected repeated stop to keep the result, got %v and %v", first, second)
	}
}

func TestDepthLimitedSearchEndsHelpers(t *testing.T) {
	var mu sync.Mutex
	var infos []search.Info
	var results []search.Result
	p, pos := newTestPool(t, Config{
		OnInfo: func(info search.Info) {
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
		},
		OnResult: func(r search.Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		},
	})

	p.StartThreads(pos, timeman.Limits{Depth: 3}, nil, 3, false)
	result := p.Wait()
	if result.Depth != 3 {
		t.Fatalf("expected depth 3, got %d", result.Depth)
	}
	if p.IsSearching() {
		t.Fatalf("expected helpers to stop once worker 0 finished")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 {
		t.Fatalf("expected one result callback, got %d", len(results))
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 info reports, got %d", len(infos))
	}
	for i, info := range infos {
		if info.Depth != i+1 {
			t.Fatalf("expected info depth %d, got %d", i+1, info.Depth)
		}
	}
	if last := infos[len(infos)-1]; last.Nodes > p.Nodes() {
		t.Fatalf("expected reported nodes %d to be at most total %d", last.Nodes, p.Nodes())
	}
}

func TestRestartStopsPreviousSearch(t *testing.T) {
	p, pos := newTestPool(t, Config{})
	p.StartThreads(pos, timeman.Limits{Infinite: true}, nil, 2, false)
	time.Sleep(20 * time.Millisecond)

	nf6, err := pos.ParseMove("g8f6")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	p.StartThreads(pos, timeman.Limits{Depth: 2}, []board.Move{nf6}, 2, false)
	result := p.Wait()
	if result.BestMove != nf6 {
		t.Fatalf("expected restricted move %s, got %s", nf6, result.BestMove)
	}
	if result.Depth != 2 {
		t.Fatalf("expected depth 2, got %d", result.Depth)
	}
}

func TestWorkerCountClampedToOne(t *testing.T) {
	p, pos := newTestPool(t, Config{})
	p.StartThreads(pos, timeman.Limits{Depth: 1}, nil, 0, false)
	p.Wait()
	if n := len(p.currentWorkers()); n != 1 {
		t.Fatalf("expected 1 worker, got %d", n)
	}
	if p.Nodes() == 0 {
		t.Fatalf("expected nodes to be counted")
	}
}
