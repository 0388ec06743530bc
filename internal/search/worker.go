// Package search implements the alpha-beta search run by each worker thread.
package search

import (
	"sync/atomic"
	"time"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/eval"
	"github.com/joergoster/Smallbrain/internal/tablebase"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

const (
	checkInterval     = 1024
	aspirationDelta   = 25
	aspirationDepth   = 5
	aspirationFullAt  = 1000
	maxTriedQuiets    = 64
	nullMinDepth      = 3
	nullBaseReduction = 3
)

// Shared is the only state visible to every worker of one search.
type Shared struct {
	Stop atomic.Bool
	TT   *tt.Table
}

func NewShared(table *tt.Table) *Shared {
	return &Shared{TT: table}
}

type Options struct {
	ID           int
	Limits       timeman.Limits
	SearchMoves  []board.Move
	UseTableBase bool
	Evaluator    eval.Evaluator
	Prober       tablebase.Prober
	Overhead     time.Duration
	Start        time.Time
	OnInfo       func(Info)
}

type stackEntry struct {
	move  board.Move
	piece board.Piece
}

type Worker struct {
	id        int
	shared    *Shared
	pos       board.Position
	evaluator eval.Evaluator
	prober    tablebase.Prober
	useTB     bool
	limits    timeman.Limits
	time      *timeman.Manager
	onInfo    func(Info)

	nodes    atomic.Uint64
	tbhits   atomic.Uint64
	seldepth int
	stopped  bool
	// floorReached is set once depth 1 completed; limits apply only after.
	floorReached bool
	completed    atomic.Int32
	researches   int

	hist      *History
	pv        pvTable
	stack     [MaxPly + 1]stackEntry
	lists     [MaxPly + 1]board.MoveList
	rootMoves board.MoveList
}

// NewWorker copies pos so the worker owns its position.
func NewWorker(shared *Shared, pos board.Position, opts Options) *Worker {
	if opts.Evaluator == nil {
		opts.Evaluator = eval.NewMaterial(eval.DefaultWeights())
	}
	if opts.Prober == nil {
		opts.Prober = tablebase.None{}
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	w := &Worker{
		id:        opts.ID,
		shared:    shared,
		pos:       pos.Copy(),
		evaluator: opts.Evaluator,
		prober:    opts.Prober,
		useTB:     opts.UseTableBase,
		limits:    opts.Limits,
		onInfo:    opts.OnInfo,
		hist:      NewHistory(),
	}
	w.time = timeman.New(opts.Limits, w.pos.SideToMove(), opts.Overhead, opts.Start)
	w.initRoot(opts.SearchMoves)
	return w
}

// initRoot fills rootMoves with the legal moves, keeping only the requested
// ones when that leaves anything to search.
func (w *Worker) initRoot(searchMoves []board.Move) {
	w.pos.GenerateMoves(board.GenAll, &w.rootMoves)
	if len(searchMoves) == 0 {
		return
	}
	var restricted board.MoveList
	for i := 0; i < w.rootMoves.Len(); i++ {
		m := w.rootMoves.At(i)
		for _, allowed := range searchMoves {
			if m == allowed {
				restricted.Add(m)
				break
			}
		}
	}
	if restricted.Len() > 0 {
		w.rootMoves = restricted
	}
}

func (w *Worker) ID() int {
	return w.id
}

func (w *Worker) Nodes() uint64 {
	return w.nodes.Load()
}

func (w *Worker) TBHits() uint64 {
	return w.tbhits.Load()
}

func (w *Worker) CompletedDepth() int {
	return int(w.completed.Load())
}

func (w *Worker) Elapsed() time.Duration {
	return w.time.Elapsed()
}

func (w *Worker) RootMoves() []board.Move {
	return w.rootMoves.Slice()
}

// IterativeDeepening searches depth 1, 2, ... up to maxDepth and returns the
// result of the last depth that completed without interruption.
func (w *Worker) IterativeDeepening(maxDepth int) Result {
	maxDepth = clamp(maxDepth, 1, MaxPly-1)
	w.stopped = false
	w.floorReached = false

	if w.rootMoves.Len() == 0 {
		score := ValueDraw
		if w.pos.InCheck() {
			score = matedIn(0)
		}
		return Result{BestMove: board.NoMove, Score: score}
	}

	result := Result{BestMove: w.firstRootMove()}
	prev := 0
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && w.id == 0 && w.time.SoftExceeded() {
			break
		}
		if w.shared.Stop.Load() {
			break
		}
		w.seldepth = 0
		score := w.aspiration(depth, prev)
		if w.stopped {
			break
		}
		prev = score
		result = Result{
			BestMove: w.pv.moves[0][0],
			PV:       w.pv.line(),
			Score:    score,
			Depth:    depth,
			SelDepth: w.seldepth,
		}
		w.completed.Store(int32(depth))
		w.floorReached = true
		if w.id == 0 && w.onInfo != nil {
			w.onInfo(Info{
				Depth:    depth,
				SelDepth: w.seldepth,
				Score:    score,
				Nodes:    w.Nodes(),
				TBHits:   w.TBHits(),
				Time:     w.Elapsed(),
				Hashfull: w.shared.TT.Hashfull(),
				PV:       result.PV,
			})
		}
		if w.id == 0 && w.limits.Nodes > 0 && w.Nodes() >= w.limits.Nodes {
			break
		}
	}
	return result
}

func (w *Worker) firstRootMove() board.Move {
	ttMove := board.NoMove
	if e, ok := w.shared.TT.Probe(w.pos.Key()); ok {
		ttMove = e.Move
	}
	mp := newRootPicker(w, &w.rootMoves, ttMove)
	return mp.Next()
}

// aspiration re-searches depth with a widening window until the score lands
// strictly inside it.
func (w *Worker) aspiration(depth, prev int) int {
	alpha, beta := -ValueInfinite, ValueInfinite
	delta := aspirationDelta
	if depth >= aspirationDepth {
		alpha = max(prev-delta, -ValueInfinite)
		beta = min(prev+delta, ValueInfinite)
	}
	for {
		score := w.absearch(depth, alpha, beta, 0, false)
		if w.stopped {
			return 0
		}
		switch {
		case score <= alpha:
			beta = (alpha + beta) / 2
			alpha = max(score-delta, -ValueInfinite)
		case score >= beta:
			beta = min(score+delta, ValueInfinite)
		default:
			return score
		}
		delta += delta / 2
		if delta >= aspirationFullAt {
			alpha, beta = -ValueInfinite, ValueInfinite
		}
		w.researches++
	}
}

// checkStop polls the shared flag every checkInterval nodes. Only worker 0
// enforces the time and node limits, and only once depth 1 completed.
func (w *Worker) checkStop() bool {
	if w.stopped {
		return true
	}
	if w.nodes.Load()%checkInterval != 0 {
		return false
	}
	if w.shared.Stop.Load() {
		w.stopped = true
		return true
	}
	if w.id == 0 && w.floorReached {
		if w.time.HardExceeded() || (w.limits.Nodes > 0 && w.Nodes() >= w.limits.Nodes) {
			w.shared.Stop.Store(true)
			w.stopped = true
		}
	}
	return w.stopped
}

func (w *Worker) prevMove(ply int) board.Move {
	if ply < 1 {
		return board.NoMove
	}
	return w.stack[ply-1].move
}

func (w *Worker) contKeys(ply int) [2]contKey {
	keys := [2]contKey{{piece: board.NoPiece}, {piece: board.NoPiece}}
	for i := range keys {
		back := ply - 1 - i
		if back < 0 {
			break
		}
		if e := w.stack[back]; e.move != board.NullMove && e.move != board.NoMove {
			keys[i] = contKey{piece: e.piece, to: e.move.To()}
		}
	}
	return keys
}
