package board

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

var seeValues = [...]int{100, 320, 330, 500, 900, 20000, 0}

type frame struct {
	pos      *chess.Position
	moves    []*chess.Move
	pieces   [64]Piece
	side     Color
	castling uint8
	ep       Square
	halfmove int
	key      uint64
	null     bool
}

// Chess implements Position on top of github.com/notnil/chess. Each made
// move pushes a frame, so unmaking is a pop.
type Chess struct {
	frames []frame
}

var _ Position = (*Chess)(nil)

func NewChess(fen string) (*Chess, error) {
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		fen = StartFEN
	}
	pos, err := parseFEN(fen)
	if err != nil {
		return nil, err
	}
	c := &Chess{frames: make([]frame, 0, 256)}
	c.frames = append(c.frames, newFrame(pos))
	if kingSquare(&c.top().pieces, White) == NoSquare || kingSquare(&c.top().pieces, Black) == NoSquare {
		return nil, fmt.Errorf("%w: %q: missing king", ErrInvalidFEN, fen)
	}
	return c, nil
}

func StartPosition() *Chess {
	c, err := NewChess(StartFEN)
	if err != nil {
		panic(err)
	}
	return c
}

func parseFEN(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, err)
	}
	return chess.NewGame(opt).Position(), nil
}

func newFrame(pos *chess.Position) frame {
	f := frame{pos: pos, ep: NoSquare}
	b := pos.Board()
	for sq := 0; sq < 64; sq++ {
		f.pieces[sq] = fromChessPiece(b.Piece(chess.Square(sq)))
	}
	fields := strings.Fields(pos.String())
	if len(fields) > 1 && fields[1] == "b" {
		f.side = Black
	}
	if len(fields) > 2 {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				f.castling |= 1
			case 'Q':
				f.castling |= 2
			case 'k':
				f.castling |= 4
			case 'q':
				f.castling |= 8
			}
		}
	}
	if len(fields) > 3 {
		if sq, ok := ParseSquare(fields[3]); ok {
			f.ep = sq
		}
	}
	if len(fields) > 4 {
		f.halfmove, _ = strconv.Atoi(fields[4])
	}
	f.key = computeKey(&f.pieces, f.side, f.castling, f.ep)
	return f
}

func (f *frame) legal() []*chess.Move {
	if f.moves == nil {
		f.moves = f.pos.ValidMoves()
	}
	return f.moves
}

func (f *frame) find(m Move) *chess.Move {
	for _, cm := range f.legal() {
		if fromChessMove(cm) == m {
			return cm
		}
	}
	return nil
}

func (c *Chess) top() *frame {
	return &c.frames[len(c.frames)-1]
}

func (c *Chess) GenerateMoves(kind GenKind, list *MoveList) {
	list.Clear()
	cur := c.top()
	for _, cm := range cur.legal() {
		m := fromChessMove(cm)
		if kind == GenCaptures && !c.IsCapture(m) && m.Kind() != Promotion {
			continue
		}
		list.Add(m)
	}
	moves := list.Moves[:list.Size]
	sort.Slice(moves, func(i, j int) bool { return moves[i].Move < moves[j].Move })
}

func (c *Chess) MakeMove(m Move) {
	cur := c.top()
	cm := cur.find(m)
	if cm == nil {
		panic(fmt.Sprintf("board: %s is not legal in %s", m, cur.pos))
	}
	c.frames = append(c.frames, newFrame(cur.pos.Update(cm)))
}

func (c *Chess) UnmakeMove() {
	if len(c.frames) > 1 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

func (c *Chess) MakeNullMove() {
	fields := strings.Fields(c.top().pos.String())
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	pos, err := parseFEN(strings.Join(fields, " "))
	if err != nil {
		panic(err)
	}
	next := newFrame(pos)
	next.null = true
	c.frames = append(c.frames, next)
}

func (c *Chess) UnmakeNullMove() {
	c.UnmakeMove()
}

func (c *Chess) InCheck() bool {
	cur := c.top()
	king := kingSquare(&cur.pieces, cur.side)
	return king != NoSquare && attacked(&cur.pieces, king, cur.side.Other())
}

func (c *Chess) Key() uint64 {
	return c.top().key
}

func (c *Chess) SideToMove() Color {
	return c.top().side
}

func (c *Chess) PieceOn(sq Square) Piece {
	return c.top().pieces[sq]
}

func (c *Chess) MovedPiece(m Move) Piece {
	return c.top().pieces[m.From()]
}

func (c *Chess) CapturedPiece(m Move) Piece {
	cur := c.top()
	if m.Kind() == EnPassant {
		return MakePiece(cur.side.Other(), Pawn)
	}
	if m.Kind() == Castling {
		return NoPiece
	}
	return cur.pieces[m.To()]
}

func (c *Chess) IsCapture(m Move) bool {
	return c.CapturedPiece(m) != NoPiece
}

// SEE reports whether m wins at least threshold centipawns, assuming a
// defended destination costs the moving piece.
func (c *Chess) SEE(m Move, threshold int) bool {
	cur := c.top()
	gain := 0
	if victim := c.CapturedPiece(m); victim != NoPiece {
		gain = seeValues[victim.Type()]
	}
	mover := cur.pieces[m.From()].Type()
	if promo := m.Promotion(); promo != NoPieceType {
		gain += seeValues[promo] - seeValues[Pawn]
		mover = promo
	}
	if gain < threshold {
		return false
	}
	if !attacked(&cur.pieces, m.To(), cur.side.Other()) {
		return true
	}
	return gain-seeValues[mover] >= threshold
}

func (c *Chess) IsDraw() bool {
	cur := c.top()
	if cur.halfmove >= 100 {
		return true
	}
	last := len(c.frames) - 1
	for i := last - 2; i >= 0 && last-i <= cur.halfmove; i -= 2 {
		if c.frames[i+1].null || c.frames[i+2].null {
			break
		}
		if c.frames[i].key == cur.key {
			return true
		}
	}
	return insufficientMaterial(&cur.pieces)
}

func insufficientMaterial(pieces *[64]Piece) bool {
	minors := 0
	for _, p := range pieces {
		switch p.Type() {
		case NoPieceType, King:
		case Knight, Bishop:
			minors++
		default:
			return false
		}
	}
	return minors <= 1
}

func (c *Chess) HasNonPawnMaterial(side Color) bool {
	for _, p := range c.top().pieces {
		if p == NoPiece || p.Color() != side {
			continue
		}
		if t := p.Type(); t != Pawn && t != King {
			return true
		}
	}
	return false
}

func (c *Chess) ParseMove(uci string) (Move, error) {
	for _, cm := range c.top().legal() {
		if m := fromChessMove(cm); m.String() == uci {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
}

func (c *Chess) FEN() string {
	return c.top().pos.String()
}

// Copy returns an independent position sharing no lazily cached state, so the
// copy may be searched on another goroutine.
func (c *Chess) Copy() Position {
	out := &Chess{frames: make([]frame, len(c.frames), cap(c.frames))}
	copy(out.frames, c.frames)
	for i := range out.frames {
		pos, err := parseFEN(out.frames[i].pos.String())
		if err != nil {
			panic(err)
		}
		out.frames[i].pos = pos
		out.frames[i].moves = nil
	}
	return out
}

func (c *Chess) String() string {
	return c.FEN()
}

func fromChessMove(cm *chess.Move) Move {
	from, to := Square(cm.S1()), Square(cm.S2())
	switch {
	case cm.Promo() != chess.NoPieceType:
		return NewPromotion(from, to, fromChessType(cm.Promo()))
	case cm.HasTag(chess.EnPassant):
		return NewEnPassant(from, to)
	case cm.HasTag(chess.KingSideCastle), cm.HasTag(chess.QueenSideCastle):
		return NewCastling(from, to)
	}
	return NewMove(from, to)
}

func fromChessType(pt chess.PieceType) PieceType {
	switch pt {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	}
	return NoPieceType
}

func fromChessPiece(p chess.Piece) Piece {
	if p == chess.NoPiece {
		return NoPiece
	}
	side := White
	if p.Color() == chess.Black {
		side = Black
	}
	return MakePiece(side, fromChessType(p.Type()))
}
