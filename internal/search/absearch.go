package search

import (
	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/tablebase"
	"github.com/joergoster/Smallbrain/internal/tt"
)

func (w *Worker) absearch(depth, alpha, beta, ply int, allowNull bool) int {
	w.pv.clear(ply)
	root := ply == 0
	pvNode := beta-alpha > 1

	inCheck := w.pos.InCheck()
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return w.qsearch(alpha, beta, ply)
	}

	w.nodes.Add(1)
	if w.checkStop() {
		return 0
	}
	if ply > w.seldepth {
		w.seldepth = ply
	}
	if ply >= MaxPly-1 {
		return w.evaluator.Evaluate(w.pos)
	}

	if !root {
		if w.pos.IsDraw() {
			return ValueDraw
		}
		alpha = max(alpha, matedIn(ply))
		beta = min(beta, mateIn(ply+1))
		if alpha >= beta {
			return alpha
		}
	}

	key := w.pos.Key()
	ttMove := board.NoMove
	if e, ok := w.shared.TT.Probe(key); ok {
		ttMove = e.Move
		if !root && !pvNode && e.Depth >= depth {
			score := ScoreFromTT(e.Score, ply)
			switch {
			case e.Bound == tt.BoundExact,
				e.Bound == tt.BoundLower && score >= beta,
				e.Bound == tt.BoundUpper && score <= alpha:
				return score
			}
		}
	}

	if !root && w.useTB {
		if result, ok := w.prober.Probe(w.pos); ok {
			w.tbhits.Add(1)
			score := tbScore(result, ply)
			w.shared.TT.Store(key, depth, ScoreToTT(score, ply), tt.BoundExact, board.NoMove)
			return score
		}
	}

	staticEval := 0
	if !inCheck {
		staticEval = w.evaluator.Evaluate(w.pos)
	}

	side := w.pos.SideToMove()
	if !pvNode && !inCheck && allowNull && depth >= nullMinDepth && staticEval >= beta && w.pos.HasNonPawnMaterial(side) {
		r := nullBaseReduction + depth/6
		w.stack[ply].move = board.NullMove
		w.stack[ply].piece = board.NoPiece
		w.pos.MakeNullMove()
		score := -w.absearch(depth-1-r, -beta, -beta+1, ply+1, false)
		w.pos.UnmakeNullMove()
		if w.stopped {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	var mp MovePicker
	if root {
		mp = newRootPicker(w, &w.rootMoves, ttMove)
	} else {
		mp = newMainPicker(w, &w.lists[ply], ply, ttMove)
	}

	var (
		tried       [maxTriedQuiets]board.Move
		triedPieces [maxTriedQuiets]board.Piece
		nTried      int
	)
	oldAlpha := alpha
	bestScore := -ValueInfinite
	bestMove := board.NoMove
	made := 0

	for move := mp.Next(); move != board.NoMove; move = mp.Next() {
		quiet := !w.pos.IsCapture(move) && move.Kind() != board.Promotion
		piece := w.pos.MovedPiece(move)
		made++

		w.stack[ply].move = move
		w.stack[ply].piece = piece
		w.pos.MakeMove(move)
		givesCheck := w.pos.InCheck()
		newDepth := depth - 1

		var score int
		if made == 1 {
			score = -w.absearch(newDepth, -beta, -alpha, ply+1, true)
		} else {
			r := 0
			if quiet && !inCheck && !givesCheck {
				r = reduction(made, depth)
				if pvNode {
					r--
				}
				r = clamp(r, 0, newDepth-1)
			}
			score = -w.absearch(newDepth-r, -alpha-1, -alpha, ply+1, true)
			if r > 0 && score > alpha {
				score = -w.absearch(newDepth, -alpha-1, -alpha, ply+1, true)
			}
			if pvNode && score > alpha && score < beta {
				score = -w.absearch(newDepth, -beta, -alpha, ply+1, true)
			}
		}
		w.pos.UnmakeMove()
		if w.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				bestMove = move
				w.pv.update(ply, move)
				if score >= beta {
					if quiet {
						w.hist.update(side, ply, depth, move, piece, tried[:nTried], triedPieces[:nTried], w.contKeys(ply), w.prevMove(ply))
					}
					w.shared.TT.Store(key, depth, ScoreToTT(beta, ply), tt.BoundLower, move)
					return beta
				}
			}
		}
		if quiet && nTried < maxTriedQuiets {
			tried[nTried] = move
			triedPieces[nTried] = piece
			nTried++
		}
	}

	if made == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return ValueDraw
	}

	bound := tt.BoundUpper
	if alpha > oldAlpha {
		bound = tt.BoundExact
	}
	w.shared.TT.Store(key, depth, ScoreToTT(bestScore, ply), bound, bestMove)
	return bestScore
}

// qsearch resolves captures and promotions below the horizon. The static
// evaluation is a lower bound: the side to move may decline every capture.
func (w *Worker) qsearch(alpha, beta, ply int) int {
	w.pv.clear(ply)
	w.nodes.Add(1)
	if w.checkStop() {
		return 0
	}
	if ply > w.seldepth {
		w.seldepth = ply
	}
	if w.pos.IsDraw() {
		return ValueDraw
	}
	standPat := w.evaluator.Evaluate(w.pos)
	if ply >= MaxPly-1 || standPat >= beta {
		return standPat
	}
	pvNode := beta-alpha > 1

	key := w.pos.Key()
	if e, ok := w.shared.TT.Probe(key); ok && !pvNode {
		score := ScoreFromTT(e.Score, ply)
		switch {
		case e.Bound == tt.BoundExact,
			e.Bound == tt.BoundLower && score >= beta,
			e.Bound == tt.BoundUpper && score <= alpha:
			return score
		}
	}

	oldAlpha := alpha
	if standPat > alpha {
		alpha = standPat
	}
	best := standPat
	bestMove := board.NoMove

	mp := newQuiescencePicker(w, &w.lists[ply], ply)
	for move := mp.Next(); move != board.NoMove; move = mp.Next() {
		w.pos.MakeMove(move)
		score := -w.qsearch(-beta, -alpha, ply+1)
		w.pos.UnmakeMove()
		if w.stopped {
			return 0
		}
		if score > best {
			best = score
			if score > alpha {
				alpha = score
				bestMove = move
				w.pv.update(ply, move)
				if score >= beta {
					w.shared.TT.Store(key, 0, ScoreToTT(score, ply), tt.BoundLower, move)
					return score
				}
			}
		}
	}

	bound := tt.BoundUpper
	if alpha > oldAlpha {
		bound = tt.BoundExact
	}
	w.shared.TT.Store(key, 0, ScoreToTT(best, ply), bound, bestMove)
	return best
}

func tbScore(result tablebase.Result, ply int) int {
	switch result {
	case tablebase.Win:
		return ValueTBWin - ply
	case tablebase.Loss:
		return -ValueTBWin + ply
	}
	return ValueDraw
}
