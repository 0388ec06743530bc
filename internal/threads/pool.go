// Package threads runs lazy-SMP searches: every worker searches the same root
// with private ordering tables, sharing only the stop flag and the
// transposition table.
package threads

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/eval"
	"github.com/joergoster/Smallbrain/internal/search"
	"github.com/joergoster/Smallbrain/internal/tablebase"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

type Config struct {
	Evaluator eval.Evaluator
	Prober    tablebase.Prober
	Overhead  time.Duration
	// OnInfo receives worker 0's per-depth report with pool-wide counters.
	OnInfo func(search.Info)
	// OnResult runs once per search after every worker joined.
	OnResult func(search.Result)
}

type Pool struct {
	mu        sync.Mutex
	table     *tt.Table
	cfg       Config
	shared    *search.Shared
	workers   atomic.Pointer[[]*search.Worker]
	done      chan struct{}
	searching atomic.Bool

	resultMu sync.Mutex
	result   search.Result

	log zerolog.Logger
}

func NewPool(table *tt.Table, cfg Config) *Pool {
	if cfg.Evaluator == nil {
		cfg.Evaluator = eval.NewMaterial(eval.DefaultWeights())
	}
	if cfg.Prober == nil {
		cfg.Prober = tablebase.None{}
	}
	return &Pool{
		table: table,
		cfg:   cfg,
		log:   log.With().Str("component", "threads").Logger(),
	}
}

// StartThreads stops any running search, then launches workerCount workers on
// pos. It returns once the workers are running.
func (p *Pool) StartThreads(pos board.Position, limits timeman.Limits, searchMoves []board.Move, workerCount int, useTB bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	workerCount = max(workerCount, 1)
	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = search.MaxPly - 1
	}
	p.table.NextGeneration()
	shared := search.NewShared(p.table)
	start := time.Now()

	workers := make([]*search.Worker, workerCount)
	for i := range workers {
		opts := search.Options{
			ID:           i,
			Limits:       limits,
			SearchMoves:  searchMoves,
			UseTableBase: useTB,
			Evaluator:    p.cfg.Evaluator,
			Prober:       p.cfg.Prober,
			Overhead:     p.cfg.Overhead,
			Start:        start,
		}
		if i == 0 {
			opts.OnInfo = p.forwardInfo
		}
		workers[i] = search.NewWorker(shared, pos, opts)
	}
	p.shared = shared
	p.workers.Store(&workers)
	p.setResult(search.Result{})
	p.searching.Store(true)

	p.log.Debug().
		Int("workers", workerCount).
		Int("depth", maxDepth).
		Int("searchmoves", len(searchMoves)).
		Msg("search-started")

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			result := w.IterativeDeepening(maxDepth)
			if w.ID() == 0 {
				p.setResult(result)
				shared.Stop.Store(true)
			}
			return nil
		})
	}

	done := make(chan struct{})
	p.done = done
	go func() {
		_ = g.Wait()
		result := p.Result()
		p.searching.Store(false)
		p.log.Info().
			Str("bestmove", result.BestMove.String()).
			Int("depth", result.Depth).
			Str("score", search.ScoreText(result.Score)).
			Uint64("nodes", p.Nodes()).
			Dur("elapsed", time.Since(start)).
			Msg("search-finished")
		if p.cfg.OnResult != nil {
			p.cfg.OnResult(result)
		}
		close(done)
	}()
}

// StopThreads raises the stop flag and joins every worker. It is a no-op when
// nothing is running.
func (p *Pool) StopThreads() search.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return p.Result()
}

func (p *Pool) stopLocked() {
	if p.done == nil {
		return
	}
	p.shared.Stop.Store(true)
	<-p.done
}

// Wait joins the running search without forcing it to stop.
func (p *Pool) Wait() search.Result {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
	return p.Result()
}

func (p *Pool) IsSearching() bool {
	return p.searching.Load()
}

func (p *Pool) Result() search.Result {
	p.resultMu.Lock()
	defer p.resultMu.Unlock()
	return p.result
}

func (p *Pool) setResult(r search.Result) {
	p.resultMu.Lock()
	p.result = r
	p.resultMu.Unlock()
}

func (p *Pool) currentWorkers() []*search.Worker {
	if ws := p.workers.Load(); ws != nil {
		return *ws
	}
	return nil
}

func (p *Pool) Nodes() uint64 {
	return lo.SumBy(p.currentWorkers(), func(w *search.Worker) uint64 { return w.Nodes() })
}

func (p *Pool) TBHits() uint64 {
	return lo.SumBy(p.currentWorkers(), func(w *search.Worker) uint64 { return w.TBHits() })
}

func (p *Pool) forwardInfo(info search.Info) {
	if p.cfg.OnInfo == nil {
		return
	}
	info.Nodes = p.Nodes()
	info.TBHits = p.TBHits()
	p.cfg.OnInfo(info)
}
