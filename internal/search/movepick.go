package search

import "github.com/joergoster/Smallbrain/internal/board"

const (
	scoreTTMove      = 10_000_000
	scoreGoodCapture = 7_000_000
	scoreKiller1     = 900_000
	scoreKiller2     = 800_000
	scoreCounter     = 600_000
)

type pickKind uint8

const (
	pickMain pickKind = iota
	pickQuiescence
)

type stage uint8

const (
	stageGenerate stage = iota
	stagePickNext
	stageDone
)

func transition(s stage) stage {
	switch s {
	case stageGenerate:
		return stagePickNext
	default:
		return stageDone
	}
}

var pieceOrder = [...]int32{1, 2, 3, 4, 5, 6, 0}

// mvvlva ranks captures by victim first, then by the cheapest attacker.
var mvvlva [7][7]int32

func init() {
	for victim := board.Pawn; victim <= board.NoPieceType; victim++ {
		for attacker := board.Pawn; attacker <= board.NoPieceType; attacker++ {
			mvvlva[victim][attacker] = pieceOrder[victim]*8 - pieceOrder[attacker] + 8
		}
	}
}

// MovePicker yields the moves of one node best first, using a partial
// selection sort over the caller's list.
type MovePicker struct {
	kind   pickKind
	stage  stage
	w      *Worker
	list   *board.MoveList
	ply    int
	ttMove board.Move
	played int
	scored bool
}

func newMainPicker(w *Worker, list *board.MoveList, ply int, ttMove board.Move) MovePicker {
	return MovePicker{kind: pickMain, stage: stageGenerate, w: w, list: list, ply: ply, ttMove: ttMove}
}

func newQuiescencePicker(w *Worker, list *board.MoveList, ply int) MovePicker {
	return MovePicker{kind: pickQuiescence, stage: stageGenerate, w: w, list: list, ply: ply}
}

// newRootPicker orders a list that is already populated, such as the root
// moves restricted by the caller.
func newRootPicker(w *Worker, list *board.MoveList, ttMove board.Move) MovePicker {
	return MovePicker{kind: pickMain, stage: stagePickNext, w: w, list: list, ttMove: ttMove}
}

func (mp *MovePicker) Next() board.Move {
	for {
		switch mp.stage {
		case stageGenerate:
			kind := board.GenAll
			if mp.kind == pickQuiescence {
				kind = board.GenCaptures
			}
			mp.w.pos.GenerateMoves(kind, mp.list)
			mp.stage = transition(mp.stage)
		case stagePickNext:
			if mp.played >= mp.list.Len() {
				mp.stage = transition(mp.stage)
				continue
			}
			return mp.pickBest()
		default:
			return board.NoMove
		}
	}
}

func (mp *MovePicker) pickBest() board.Move {
	moves := mp.list.Moves[:mp.list.Len()]
	if !mp.scored {
		for i := mp.played; i < len(moves); i++ {
			moves[i].Score = mp.score(moves[i].Move)
		}
		mp.scored = true
	}
	best := mp.played
	for i := mp.played + 1; i < len(moves); i++ {
		if moves[i].Score > moves[best].Score {
			best = i
		}
	}
	mp.list.Swap(mp.played, best)
	m := moves[mp.played].Move
	mp.played++
	return m
}

func (mp *MovePicker) score(m board.Move) int32 {
	pos := mp.w.pos
	victim := pos.CapturedPiece(m).Type()
	if victim == board.NoPieceType && m.Kind() == board.Promotion {
		victim = m.Promotion()
	}
	tactical := victim != board.NoPieceType
	attacker := pos.MovedPiece(m).Type()

	if mp.kind == pickQuiescence {
		return mvvlva[victim][attacker]
	}
	if m == mp.ttMove {
		return scoreTTMove
	}
	if tactical {
		if pos.SEE(m, 0) {
			return scoreGoodCapture + mvvlva[victim][attacker]
		}
		return mvvlva[victim][attacker]
	}

	h := mp.w.hist
	killers := h.Killers(mp.ply)
	switch m {
	case killers[0]:
		return scoreKiller1
	case killers[1]:
		return scoreKiller2
	}
	prev := mp.w.contKeys(mp.ply)
	if m == h.Counter(mp.w.prevMove(mp.ply)) {
		return scoreCounter
	}
	piece := pos.MovedPiece(m)
	cont := h.Cont(prev[0].piece, prev[0].to, piece, m.To()) + h.Cont(prev[1].piece, prev[1].to, piece, m.To())
	return h.Main(pos.SideToMove(), m) + 2*cont
}
