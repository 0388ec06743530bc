package search

import (
	"math"

	"github.com/joergoster/Smallbrain/internal/board"
)

const lmrMinMoves = 3

// reductions[moves][depth] = 1 + ln(moves)*ln(depth)/1.75. Row and column 0
// stay zero; lookups happen only after lmrMinMoves moves at depth >= 3.
var reductions [board.MaxMoves][MaxPly]int

func init() {
	for moves := 1; moves < board.MaxMoves; moves++ {
		for depth := 1; depth < MaxPly; depth++ {
			reductions[moves][depth] = int(1 + math.Log(float64(moves))*math.Log(float64(depth))/1.75)
		}
	}
}

func reduction(moves, depth int) int {
	if moves <= lmrMinMoves || depth < 3 {
		return 0
	}
	return reductions[min(moves, board.MaxMoves-1)][min(depth, MaxPly-1)]
}
