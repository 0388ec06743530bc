package board

type MoveKind uint16

const (
	Normal    MoveKind = 0 << 14
	Promotion MoveKind = 1 << 14
	EnPassant MoveKind = 2 << 14
	Castling  MoveKind = 3 << 14
)

// Move layout: bits 0-5 origin, 6-11 destination, 12-13 promotion piece
// (knight..queen), 14-15 kind.
type Move uint16

const (
	NoMove   Move = 0
	NullMove Move = 65
)

func NewMove(from, to Square) Move {
	return Move(uint16(from) | uint16(to)<<6)
}

func NewPromotion(from, to Square, promo PieceType) Move {
	return NewMove(from, to) | Move(uint16(promo-Knight)<<12) | Move(Promotion)
}

func NewEnPassant(from, to Square) Move {
	return NewMove(from, to) | Move(EnPassant)
}

func NewCastling(from, to Square) Move {
	return NewMove(from, to) | Move(Castling)
}

func (m Move) From() Square {
	return Square(m & 0x3f)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3f)
}

func (m Move) Kind() MoveKind {
	return MoveKind(m) & Castling
}

func (m Move) Promotion() PieceType {
	if m.Kind() != Promotion {
		return NoPieceType
	}
	return PieceType((m>>12)&3) + Knight
}

func (m Move) String() string {
	switch m {
	case NoMove:
		return "(none)"
	case NullMove:
		return "0000"
	}
	text := m.From().String() + m.To().String()
	if promo := m.Promotion(); promo != NoPieceType {
		text += string(pieceTypeChars[promo])
	}
	return text
}

type ScoredMove struct {
	Move  Move
	Score int32
}

// MaxMoves bounds the legal moves of any chess position (218) with headroom.
const MaxMoves = 256

type MoveList struct {
	Moves [MaxMoves]ScoredMove
	Size  int
}

func (l *MoveList) Add(m Move) {
	l.Moves[l.Size] = ScoredMove{Move: m}
	l.Size++
}

func (l *MoveList) Clear() {
	l.Size = 0
}

func (l *MoveList) Len() int {
	return l.Size
}

func (l *MoveList) At(i int) Move {
	return l.Moves[i].Move
}

func (l *MoveList) Swap(i, j int) {
	l.Moves[i], l.Moves[j] = l.Moves[j], l.Moves[i]
}

func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.Size; i++ {
		if l.Moves[i].Move == m {
			return true
		}
	}
	return false
}

func (l *MoveList) Slice() []Move {
	out := make([]Move, l.Size)
	for i := 0; i < l.Size; i++ {
		out[i] = l.Moves[i].Move
	}
	return out
}
