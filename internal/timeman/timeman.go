// Package timeman turns search limits into elapsed-time budgets.
package timeman

import (
	"time"

	"golang.org/x/exp/constraints"

	"github.com/joergoster/Smallbrain/internal/board"
)

const (
	defaultMovesToGo = 30
	DefaultOverhead  = 20 * time.Millisecond
	maximumFactor    = 5
	minimumBudget    = time.Millisecond
)

type Limits struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Time      [2]time.Duration
	Inc       [2]time.Duration
	MovesToGo int
	Infinite  bool
}

// Manager holds the soft budget, used to decide whether another depth is
// worth starting, and the hard budget after which the search is stopped.
type Manager struct {
	start   time.Time
	optimum time.Duration
	maximum time.Duration
	limited bool
}

func New(limits Limits, side board.Color, overhead time.Duration, start time.Time) *Manager {
	m := &Manager{start: start}
	if limits.Infinite {
		return m
	}
	if overhead < 0 {
		overhead = 0
	}
	if limits.MoveTime > 0 {
		m.limited = true
		m.maximum = clamp(limits.MoveTime-overhead, minimumBudget, limits.MoveTime)
		m.optimum = m.maximum
		return m
	}
	remaining := limits.Time[side]
	if remaining <= 0 {
		return m
	}
	mtg := limits.MovesToGo
	if mtg <= 0 {
		mtg = defaultMovesToGo
	}
	m.limited = true
	m.optimum = remaining/time.Duration(mtg) + limits.Inc[side]*3/4
	m.maximum = clamp(m.optimum*maximumFactor, minimumBudget, remaining-overhead)
	m.optimum = clamp(m.optimum, minimumBudget, m.maximum)
	return m
}

func (m *Manager) Limited() bool {
	return m.limited
}

func (m *Manager) Optimum() time.Duration {
	return m.optimum
}

func (m *Manager) Maximum() time.Duration {
	return m.maximum
}

func (m *Manager) Elapsed() time.Duration {
	return time.Since(m.start)
}

func (m *Manager) SoftExceeded() bool {
	return m.limited && m.Elapsed() >= m.optimum
}

func (m *Manager) HardExceeded() bool {
	return m.limited && m.Elapsed() >= m.maximum
}

// clamp bounds v to [lo, hi]; lo wins when the range is empty.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
