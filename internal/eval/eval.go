package eval

import "github.com/joergoster/Smallbrain/internal/board"

type Evaluator interface {
	Evaluate(pos board.Position) int
}

// Weights holds midgame and endgame values for pawn..queen.
type Weights struct {
	Midgame [5]int `json:"midgame"`
	Endgame [5]int `json:"endgame"`
}

func DefaultWeights() Weights {
	return Weights{
		Midgame: [5]int{98, 337, 365, 477, 1025},
		Endgame: [5]int{114, 281, 297, 512, 936},
	}
}

const (
	tempo    = 10
	maxPhase = 24
)

var phaseWeight = [...]int{0, 1, 1, 2, 4, 0}

// Material is a tapered material and piece-placement evaluator. Scores are
// relative to the side to move.
type Material struct {
	weights Weights
}

func NewMaterial(weights Weights) *Material {
	return &Material{weights: weights}
}

func (m *Material) Evaluate(pos board.Position) int {
	var mg, eg [2]int
	phase := 0
	for sq := board.A1; sq <= board.H8; sq++ {
		p := pos.PieceOn(sq)
		if p == board.NoPiece {
			continue
		}
		side, pt := p.Color(), p.Type()
		phase += phaseWeight[pt]
		if pt != board.King {
			mg[side] += m.weights.Midgame[pt]
			eg[side] += m.weights.Endgame[pt]
		}
		pmg, peg := placement(pt, side, sq)
		mg[side] += pmg
		eg[side] += peg
	}
	if phase > maxPhase {
		phase = maxPhase
	}
	us, them := pos.SideToMove(), pos.SideToMove().Other()
	mgScore := mg[us] - mg[them]
	egScore := eg[us] - eg[them]
	return (mgScore*phase+egScore*(maxPhase-phase))/maxPhase + tempo
}

func centrality(sq board.Square) int {
	df := abs(2*sq.File()-7) / 2
	dr := abs(2*sq.Rank()-7) / 2
	if dr > df {
		df = dr
	}
	return 3 - df
}

func placement(pt board.PieceType, side board.Color, sq board.Square) (int, int) {
	rank := sq.Rank()
	if side == board.Black {
		rank = 7 - rank
	}
	c := centrality(sq)
	switch pt {
	case board.Pawn:
		mg := 4 * (rank - 1)
		if rank >= 3 && (sq.File() == 3 || sq.File() == 4) {
			mg += 10
		}
		return mg, 10 * (rank - 1)
	case board.Knight:
		return 8 * c, 6 * c
	case board.Bishop:
		return 5 * c, 4 * c
	case board.Rook:
		if rank == 6 {
			return 10, 5
		}
	case board.Queen:
		return c, 3 * c
	case board.King:
		mg := -10 * c
		if rank == 0 {
			mg += 15
		}
		return mg, 10 * c
	}
	return 0, 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
