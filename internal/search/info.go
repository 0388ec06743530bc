package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/joergoster/Smallbrain/internal/board"
)

// Info is the progress report emitted once per completed depth.
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	TBHits   uint64
	Time     time.Duration
	Hashfull int
	PV       []board.Move
}

func (i Info) NPS() uint64 {
	ms := i.Time.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return i.Nodes * 1000 / uint64(ms)
}

func (i Info) String() string {
	return fmt.Sprintf("info depth %d seldepth %d score %s nodes %d nps %d tbhits %d time %d hashfull %d pv %s",
		i.Depth, i.SelDepth, ScoreText(i.Score), i.Nodes, i.NPS(), i.TBHits, i.Time.Milliseconds(), i.Hashfull, FormatPV(i.PV))
}

func FormatPV(pv []board.Move) string {
	return strings.Join(lo.Map(pv, func(m board.Move, _ int) string { return m.String() }), " ")
}

// Result is what a worker adopts from its last fully completed depth. Depth 0
// means no iteration completed and BestMove is the first ordered root move.
type Result struct {
	BestMove board.Move
	PV       []board.Move
	Score    int
	Depth    int
	SelDepth int
}
