// Package tablebase holds the endgame-table collaborator used by the search.
package tablebase

import "github.com/joergoster/Smallbrain/internal/board"

type Result uint8

const (
	Loss Result = iota
	Draw
	Win
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Loss:
		return "loss"
	}
	return "draw"
}

// MaxPieces is the largest piece count any prober here answers for.
const MaxPieces = 3

// Prober answers win/draw/loss for the side to move. ok is false when the
// position is not covered.
type Prober interface {
	Probe(pos board.Position) (Result, bool)
}

type None struct{}

func (None) Probe(board.Position) (Result, bool) {
	return Draw, false
}

// TrivialDraw resolves bare-king endings and a lone minor piece against a
// bare king, which are dead draws.
type TrivialDraw struct{}

func (TrivialDraw) Probe(pos board.Position) (Result, bool) {
	pieces := 0
	for sq := board.A1; sq <= board.H8; sq++ {
		p := pos.PieceOn(sq)
		if p == board.NoPiece {
			continue
		}
		pieces++
		if pieces > MaxPieces {
			return Draw, false
		}
		switch p.Type() {
		case board.King, board.Knight, board.Bishop:
		default:
			return Draw, false
		}
	}
	return Draw, true
}
