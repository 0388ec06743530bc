package search

import "github.com/joergoster/Smallbrain/internal/board"

// pvTable is the triangular principal variation table; row ply holds the
// line from ply to length[ply].
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *pvTable) clear(ply int) {
	pv.length[ply] = ply
}

func (pv *pvTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	next := pv.length[ply+1]
	if next < ply+1 {
		next = ply + 1
	}
	for i := ply + 1; i < next; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = next
}

func (pv *pvTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}
