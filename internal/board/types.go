package board

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

var pieceTypeChars = [...]byte{'p', 'n', 'b', 'r', 'q', 'k', '-'}

// Piece packs color and type as color*6 + type.
type Piece uint8

const NoPiece Piece = 12

func MakePiece(c Color, pt PieceType) Piece {
	if pt == NoPieceType {
		return NoPiece
	}
	return Piece(uint8(c)*6 + uint8(pt))
}

func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

func (p Piece) Color() Color {
	return Color(p / 6)
}

type Square uint8

const (
	A1 Square = 0
	H8 Square = 63

	NoSquare Square = 64
)

func SquareOf(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int {
	return int(s) & 7
}

func (s Square) Rank() int {
	return int(s) >> 3
}

func (s Square) String() string {
	if s >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File(), '1'+s.Rank())
}

func ParseSquare(text string) (Square, bool) {
	if len(text) != 2 {
		return NoSquare, false
	}
	file := int(text[0] - 'a')
	rank := int(text[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return SquareOf(file, rank), true
}
