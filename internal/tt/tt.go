// Package tt implements the transposition table shared by every search
// worker. Slots are written without locks: each holds the packed entry and the
// key xor'ed with it, so a torn write fails verification and reads as a miss.
package tt

import (
	"sync/atomic"

	"github.com/joergoster/Smallbrain/internal/board"
)

type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

func (b Bound) String() string {
	switch b {
	case BoundUpper:
		return "upper"
	case BoundLower:
		return "lower"
	case BoundExact:
		return "exact"
	}
	return "none"
}

// EntrySize is the byte footprint of one slot.
const EntrySize = 16

const hashfullSample = 1000

type Entry struct {
	Move  board.Move
	Score int
	Depth int
	Bound Bound
	Age   uint8
}

type slot struct {
	check atomic.Uint64
	data  atomic.Uint64
}

type Table struct {
	slots []slot
	age   atomic.Uint32
}

func New(megabytes int) *Table {
	t := &Table{}
	t.Resize(megabytes)
	return t
}

func entriesFor(megabytes int) int {
	if megabytes < 1 {
		megabytes = 1
	}
	n := megabytes * 1024 * 1024 / EntrySize
	if n < 1 {
		n = 1
	}
	return n
}

// Resize reallocates the table and drops every entry. It must not run
// concurrently with a search.
func (t *Table) Resize(megabytes int) {
	t.slots = make([]slot, entriesFor(megabytes))
	t.age.Store(0)
}

func (t *Table) NextGeneration() {
	t.age.Add(1)
}

func (t *Table) Generation() uint8 {
	return uint8(t.age.Load())
}

func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i].data.Store(0)
		t.slots[i].check.Store(0)
	}
	t.age.Store(0)
}

func (t *Table) index(key uint64) int {
	return int(key % uint64(len(t.slots)))
}

func (t *Table) Probe(key uint64) (Entry, bool) {
	s := &t.slots[t.index(key)]
	check := s.check.Load()
	data := s.data.Load()
	if check^data != key {
		return Entry{}, false
	}
	e := unpack(data)
	if e.Bound == BoundNone {
		return Entry{}, false
	}
	return e, true
}

// Store writes into the key's slot when it is empty, belongs to an older
// generation, was searched no deeper, or holds the same key and the new bound
// is exact. Storing NoMove over the same key keeps the previous move.
func (t *Table) Store(key uint64, depth int, score int, bound Bound, move board.Move) {
	s := &t.slots[t.index(key)]
	check := s.check.Load()
	data := s.data.Load()
	old := unpack(data)
	age := t.Generation()
	sameKey := old.Bound != BoundNone && check^data == key

	if old.Bound != BoundNone && old.Age == age && depth < old.Depth && !(sameKey && bound == BoundExact) {
		return
	}
	if move == board.NoMove && sameKey {
		move = old.Move
	}
	packed := pack(Entry{Move: move, Score: score, Depth: depth, Bound: bound, Age: age})
	s.check.Store(key ^ packed)
	s.data.Store(packed)
}

// Hashfull returns the permille of sampled slots written this generation.
func (t *Table) Hashfull() int {
	sample := len(t.slots)
	if sample > hashfullSample {
		sample = hashfullSample
	}
	age := t.Generation()
	used := 0
	for i := 0; i < sample; i++ {
		e := unpack(t.slots[i].data.Load())
		if e.Bound != BoundNone && e.Age == age {
			used++
		}
	}
	return used * 1000 / sample
}

func (t *Table) Count() int {
	count := 0
	for i := range t.slots {
		if unpack(t.slots[i].data.Load()).Bound != BoundNone {
			count++
		}
	}
	return count
}

func (t *Table) Capacity() int {
	if t == nil {
		return 0
	}
	return len(t.slots)
}

// data layout: move 0-15, score 16-31, depth 32-39, bound 40-41, age 48-55
func pack(e Entry) uint64 {
	depth := e.Depth
	if depth < 0 {
		depth = 0
	}
	if depth > 255 {
		depth = 255
	}
	return uint64(e.Move) |
		uint64(uint16(int16(e.Score)))<<16 |
		uint64(uint8(depth))<<32 |
		uint64(e.Bound&3)<<40 |
		uint64(e.Age)<<48
}

func unpack(data uint64) Entry {
	return Entry{
		Move:  board.Move(data),
		Score: int(int16(uint16(data >> 16))),
		Depth: int(uint8(data >> 32)),
		Bound: Bound((data >> 40) & 3),
		Age:   uint8(data >> 48),
	}
}
