package search

import "github.com/joergoster/Smallbrain/internal/board"

const (
	maxHistory   = 16384
	maxHistBonus = 1200
)

// History is the per-worker ordering memory: butterfly history by side,
// continuation history keyed on the previous moved piece and destination,
// counter moves and two killers per ply.
type History struct {
	main    [2][64][64]int32
	cont    [12][64][12][64]int16
	counter [64][64]board.Move
	killers [MaxPly + 1][2]board.Move
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Clear() {
	*h = History{}
}

func (h *History) Killers(ply int) [2]board.Move {
	return h.killers[ply]
}

func (h *History) Counter(prev board.Move) board.Move {
	if prev == board.NoMove || prev == board.NullMove {
		return board.NoMove
	}
	return h.counter[prev.From()][prev.To()]
}

func (h *History) Main(side board.Color, m board.Move) int32 {
	return h.main[side][m.From()][m.To()]
}

func (h *History) Cont(prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square) int32 {
	if prevPiece == board.NoPiece || piece == board.NoPiece {
		return 0
	}
	return int32(h.cont[prevPiece][prevTo][piece][to])
}

func historyBonus(depth int) int {
	return min(depth*depth, maxHistBonus)
}

func gravity(entry int32, bonus int) int32 {
	b := int32(bonus)
	abs := b
	if abs < 0 {
		abs = -abs
	}
	return entry + b - entry*abs/maxHistory
}

func (h *History) storeKiller(ply int, m board.Move) {
	if h.killers[ply][0] == m {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}

type contKey struct {
	piece board.Piece
	to    board.Square
}

// update rewards the quiet move that caused a beta cutoff and punishes the
// quiets tried before it.
func (h *History) update(side board.Color, ply, depth int, best board.Move, bestPiece board.Piece, tried []board.Move, triedPieces []board.Piece, prev [2]contKey, prevMove board.Move) {
	bonus := historyBonus(depth)
	h.storeKiller(ply, best)
	if prevMove != board.NoMove && prevMove != board.NullMove {
		h.counter[prevMove.From()][prevMove.To()] = best
	}
	h.reward(side, best, bestPiece, prev, bonus)
	for i, m := range tried {
		if m == best {
			continue
		}
		h.reward(side, m, triedPieces[i], prev, -bonus)
	}
}

func (h *History) reward(side board.Color, m board.Move, piece board.Piece, prev [2]contKey, bonus int) {
	entry := &h.main[side][m.From()][m.To()]
	*entry = gravity(*entry, bonus)
	for _, p := range prev {
		if p.piece == board.NoPiece || piece == board.NoPiece {
			continue
		}
		c := &h.cont[p.piece][p.to][piece][m.To()]
		*c = int16(gravity(int32(*c), bonus))
	}
}
