package chess

// Bitboard is a bit-per-square set of board squares, A1 = bit 0, B1 = bit 1,
// ..., H8 = bit 63.
type Bitboard uint64

// Color of the side to move or of a piece.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType indexes the six piece kinds. NoPiece marks an empty square.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King

	NoPiece PieceType = 255
)

// pieceChars maps PieceType to its uppercase FEN letter.
const pieceChars = "PNBRQK"

// SquareBB returns the bitboard with only sq (0-63) set.
func SquareBB(sq int) Bitboard {
	return 1 << uint(sq)
}

func fileOf(sq int) int { return sq & 7 }
