package board

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// leastAttacker returns the cheapest piece type of color by attacking sq, or
// NoPieceType when sq is not attacked.
func leastAttacker(pieces *[64]Piece, sq Square, by Color) PieceType {
	file, rank := sq.File(), sq.Rank()

	pawnRank := rank - 1
	if by == Black {
		pawnRank = rank + 1
	}
	for _, df := range [2]int{-1, 1} {
		if onBoard(file+df, pawnRank) && pieces[SquareOf(file+df, pawnRank)] == MakePiece(by, Pawn) {
			return Pawn
		}
	}
	for _, step := range knightSteps {
		f, r := file+step[0], rank+step[1]
		if onBoard(f, r) && pieces[SquareOf(f, r)] == MakePiece(by, Knight) {
			return Knight
		}
	}

	best := NoPieceType
	scan := func(rays [4][2]int, slider PieceType) {
		for _, ray := range rays {
			f, r := file+ray[0], rank+ray[1]
			for onBoard(f, r) {
				p := pieces[SquareOf(f, r)]
				if p != NoPiece {
					if p.Color() == by && (p.Type() == slider || p.Type() == Queen) && p.Type() < best {
						best = p.Type()
					}
					break
				}
				f += ray[0]
				r += ray[1]
			}
		}
	}
	scan(bishopRays, Bishop)
	if best == Bishop {
		return best
	}
	scan(rookRays, Rook)
	if best != NoPieceType {
		return best
	}
	for _, step := range kingSteps {
		f, r := file+step[0], rank+step[1]
		if onBoard(f, r) && pieces[SquareOf(f, r)] == MakePiece(by, King) {
			return King
		}
	}
	return NoPieceType
}

func attacked(pieces *[64]Piece, sq Square, by Color) bool {
	return leastAttacker(pieces, sq, by) != NoPieceType
}

func kingSquare(pieces *[64]Piece, c Color) Square {
	king := MakePiece(c, King)
	for sq, p := range pieces {
		if p == king {
			return Square(sq)
		}
	}
	return NoSquare
}
