package board

import "sync"

type zobristTable struct {
	pieces   [12][64]uint64
	side     uint64
	castling [16]uint64
	epFile   [8]uint64
}

var (
	zobristOnce sync.Once
	zobrist     zobristTable
)

func keys() *zobristTable {
	zobristOnce.Do(func() {
		rng := splitmix64{state: 0x9e3779b97f4a7c15}
		for p := range zobrist.pieces {
			for sq := range zobrist.pieces[p] {
				zobrist.pieces[p][sq] = rng.next()
			}
		}
		zobrist.side = rng.next()
		for i := range zobrist.castling {
			zobrist.castling[i] = rng.next()
		}
		for i := range zobrist.epFile {
			zobrist.epFile[i] = rng.next()
		}
	})
	return &zobrist
}

// castling rights bitmask: K=1 Q=2 k=4 q=8
func computeKey(pieces *[64]Piece, side Color, castling uint8, ep Square) uint64 {
	z := keys()
	var key uint64
	for sq, p := range pieces {
		if p == NoPiece {
			continue
		}
		key ^= z.pieces[p][sq]
	}
	if side == Black {
		key ^= z.side
	}
	key ^= z.castling[castling&15]
	if ep < NoSquare {
		key ^= z.epFile[ep.File()]
	}
	return key
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
