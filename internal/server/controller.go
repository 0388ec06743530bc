package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/config"
	"github.com/joergoster/Smallbrain/internal/eval"
	"github.com/joergoster/Smallbrain/internal/search"
	"github.com/joergoster/Smallbrain/internal/tablebase"
	"github.com/joergoster/Smallbrain/internal/threads"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

var ErrSearching = errors.New("search in progress")

// GoRequest mirrors the limits a caller can put on one search. Zero values
// mean "not set".
type GoRequest struct {
	Depth        int      `json:"depth"`
	MoveTimeMs   int      `json:"movetime_ms"`
	WTimeMs      int      `json:"wtime_ms"`
	BTimeMs      int      `json:"btime_ms"`
	WIncMs       int      `json:"winc_ms"`
	BIncMs       int      `json:"binc_ms"`
	MovesToGo    int      `json:"movestogo"`
	Nodes        uint64   `json:"nodes"`
	Infinite     bool     `json:"infinite"`
	Threads      int      `json:"threads"`
	SearchMoves  []string `json:"searchmoves"`
	UseTableBase *bool    `json:"use_tablebase"`
}

type ResultDTO struct {
	BestMove string   `json:"bestmove"`
	PV       []string `json:"pv"`
	Score    string   `json:"score"`
	Depth    int      `json:"depth"`
	SelDepth int      `json:"seldepth"`
}

func resultToDTO(r search.Result) ResultDTO {
	return ResultDTO{
		BestMove: r.BestMove.String(),
		PV:       lo.Map(r.PV, func(m board.Move, _ int) string { return m.String() }),
		Score:    search.ScoreText(r.Score),
		Depth:    r.Depth,
		SelDepth: r.SelDepth,
	}
}

// EngineController owns the current position and the worker pool. Handlers
// go through it so that position changes never race a running search.
type EngineController struct {
	mu         sync.Mutex
	pos        board.Position
	table      *tt.Table
	pool       *threads.Pool
	lastResult search.Result
	hasResult  bool
	log        zerolog.Logger
}

type Publisher interface {
	Publish(msgType string, payload any)
}

func NewEngineController(cfg config.Config, pub Publisher) *EngineController {
	c := &EngineController{
		pos:   board.StartPosition(),
		table: tt.New(cfg.HashMB),
		log:   log.With().Str("component", "controller").Logger(),
	}
	c.pool = threads.NewPool(c.table, threads.Config{
		Evaluator: eval.NewMaterial(cfg.Eval),
		Prober:    tablebase.TrivialDraw{},
		Overhead:  time.Duration(cfg.MoveOverheadMs) * time.Millisecond,
		OnInfo: func(info search.Info) {
			if pub != nil {
				pub.Publish("info", info.String())
			}
		},
		OnResult: func(r search.Result) {
			c.mu.Lock()
			c.lastResult = r
			c.hasResult = true
			c.mu.Unlock()
			if pub != nil {
				pub.Publish("bestmove", resultToDTO(r))
			}
		},
	})
	return c
}

// SetPosition stops any running search, then sets the position from fen
// (empty for the start position) followed by moves in coordinate notation.
func (c *EngineController) SetPosition(fen string, moves []string) error {
	pos, err := board.NewChess(fen)
	if err != nil {
		return err
	}
	for _, raw := range moves {
		m, err := pos.ParseMove(raw)
		if err != nil {
			return fmt.Errorf("move %q: %w", raw, err)
		}
		pos.MakeMove(m)
	}
	c.pool.StopThreads()
	c.mu.Lock()
	c.pos = pos
	c.hasResult = false
	c.mu.Unlock()
	c.log.Debug().Str("fen", pos.FEN()).Msg("position-set")
	return nil
}

// Go starts a search on the current position and returns without waiting.
func (c *EngineController) Go(req GoRequest) {
	cfg := config.GetConfig()
	c.pool.StopThreads()
	c.mu.Lock()
	pos := c.pos.Copy()
	c.hasResult = false
	c.mu.Unlock()

	var searchMoves []board.Move
	for _, raw := range req.SearchMoves {
		m, err := pos.ParseMove(raw)
		if err != nil {
			// unknown restrictions are dropped; an empty set searches everything
			c.log.Debug().Str("move", raw).Err(err).Msg("searchmove-ignored")
			continue
		}
		searchMoves = append(searchMoves, m)
	}

	workers := req.Threads
	if workers <= 0 {
		workers = cfg.Threads
	}
	useTB := cfg.UseTableBase
	if req.UseTableBase != nil {
		useTB = *req.UseTableBase
	}
	c.pool.StartThreads(pos, limitsFromRequest(req, cfg), searchMoves, workers, useTB)
}

func limitsFromRequest(req GoRequest, cfg config.Config) timeman.Limits {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	limits := timeman.Limits{
		Depth:     req.Depth,
		Nodes:     req.Nodes,
		MoveTime:  ms(req.MoveTimeMs),
		Time:      [2]time.Duration{ms(req.WTimeMs), ms(req.BTimeMs)},
		Inc:       [2]time.Duration{ms(req.WIncMs), ms(req.BIncMs)},
		MovesToGo: req.MovesToGo,
		Infinite:  req.Infinite,
	}
	if limits.Depth <= 0 && !limits.Infinite {
		limits.Depth = cfg.DefaultDepth
	}
	return limits
}

func (c *EngineController) Stop() search.Result {
	return c.pool.StopThreads()
}

func (c *EngineController) Wait() search.Result {
	return c.pool.Wait()
}

func (c *EngineController) IsSearching() bool {
	return c.pool.IsSearching()
}

func (c *EngineController) Counters() (nodes, tbhits uint64) {
	return c.pool.Nodes(), c.pool.TBHits()
}

func (c *EngineController) Table() *tt.Table {
	return c.table
}

// ClearTable wipes the transposition table. It refuses while searching.
func (c *EngineController) ClearTable() error {
	if c.pool.IsSearching() {
		return ErrSearching
	}
	c.table.Clear()
	return nil
}

// ApplyConfig stores cfg and resizes the table when the hash size changed.
func (c *EngineController) ApplyConfig(cfg config.Config) error {
	if c.pool.IsSearching() {
		return ErrSearching
	}
	prev := config.GetConfig()
	config.SetConfig(cfg)
	cfg = config.GetConfig()
	if cfg.HashMB != prev.HashMB {
		c.table.Resize(cfg.HashMB)
		c.log.Info().Int("hash_mb", cfg.HashMB).Int("entries", c.table.Capacity()).Msg("tt-resized")
	}
	return nil
}

type StatusResponse struct {
	FEN        string        `json:"fen"`
	Searching  bool          `json:"searching"`
	Config     config.Config `json:"config"`
	LastResult *ResultDTO    `json:"last_result,omitempty"`
}

func (c *EngineController) Status() StatusResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := StatusResponse{
		FEN:       c.pos.FEN(),
		Searching: c.pool.IsSearching(),
		Config:    config.GetConfig(),
	}
	if c.hasResult {
		dto := resultToDTO(c.lastResult)
		status.LastResult = &dto
	}
	return status
}
