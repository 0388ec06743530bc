package threads

import (
	"sync"
	"sync/atomic"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/search"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

// Manager embeds one search at a time against a position it owns. Begin
// always stops the previous search before starting.
type Manager struct {
	mu        sync.Mutex
	pos       board.Position
	pool      *Pool
	moveReady atomic.Bool
}

func NewManager(table *tt.Table, pos board.Position, cfg Config) *Manager {
	m := &Manager{pos: pos.Copy()}
	onResult := cfg.OnResult
	cfg.OnResult = func(r search.Result) {
		m.moveReady.Store(true)
		if onResult != nil {
			onResult(r)
		}
	}
	m.pool = NewPool(table, cfg)
	return m
}

// SetPosition stops any running search and replaces the position.
func (m *Manager) SetPosition(pos board.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool.StopThreads()
	m.pos = pos.Copy()
	m.moveReady.Store(false)
}

func (m *Manager) Position() board.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos.Copy()
}

func (m *Manager) Begin(depth int, limits timeman.Limits, workerCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool.StopThreads()
	m.moveReady.Store(false)
	if depth > 0 {
		limits.Depth = depth
	}
	m.pool.StartThreads(m.pos, limits, nil, workerCount, false)
}

func (m *Manager) Stop() search.Result {
	return m.pool.StopThreads()
}

func (m *Manager) Wait() search.Result {
	return m.pool.Wait()
}

func (m *Manager) IsSearching() bool {
	return m.pool.IsSearching()
}

// BestMove reports the finished search's move; ok is false while a search is
// still running or none has completed.
func (m *Manager) BestMove() (board.Move, bool) {
	if !m.moveReady.Load() {
		return board.NoMove, false
	}
	return m.pool.Result().BestMove, true
}

func (m *Manager) Nodes() uint64 {
	return m.pool.Nodes()
}
