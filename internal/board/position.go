package board

import "errors"

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrInvalidFEN  = errors.New("invalid fen")
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type GenKind uint8

const (
	GenAll GenKind = iota
	// GenCaptures yields captures and promotions.
	GenCaptures
)

// Position is the board collaborator the search drives. Implementations are
// not safe for concurrent use; every worker searches its own Copy.
type Position interface {
	GenerateMoves(kind GenKind, list *MoveList)
	MakeMove(m Move)
	UnmakeMove()
	MakeNullMove()
	UnmakeNullMove()
	InCheck() bool
	Key() uint64
	SideToMove() Color
	PieceOn(sq Square) Piece
	MovedPiece(m Move) Piece
	CapturedPiece(m Move) Piece
	IsCapture(m Move) bool
	SEE(m Move, threshold int) bool
	IsDraw() bool
	HasNonPawnMaterial(c Color) bool
	ParseMove(uci string) (Move, error)
	FEN() string
	Copy() Position
}
