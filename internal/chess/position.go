package chess

import (
	"fmt"
	"strings"
)

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w"

// Position holds piece placement as bitboards plus the side to move and the
// en-passant target square. Moves applied to it are assumed pre-validated;
// nothing here re-checks legality.
type Position struct {
	byColor [2]Bitboard
	byPiece [6]Bitboard
	board   [64]PieceType
	stm     Color
	ep      int8 // en-passant target square, -1 when none
}

// State carries the per-move bookkeeping Apply needs so the caller can keep
// a fixed arena of them and Undo can restore the prior position.
type State struct {
	captured   PieceType
	capturedSq int8
	ep         int8
}

var startingPosition Position

func init() {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	startingPosition = p
}

// NewStartingPosition returns the standard starting position by value, so
// callers can reset cheaply by plain assignment.
func NewStartingPosition() Position {
	return startingPosition
}

// ParseFEN decodes the piece-placement field of a FEN string. A second
// whitespace-separated field, if present, selects the side to move; castling
// and move-counter fields are ignored.
func ParseFEN(fen string) (Position, error) {
	var p Position
	for i := range p.board {
		p.board[i] = NoPiece
	}
	p.ep = -1

	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return p, fmt.Errorf("empty FEN")
	}

	sq := 56 // FEN starts at a8
	for _, ch := range fields[0] {
		switch {
		case ch == '/':
			sq -= 16
			if sq < -8 {
				return p, fmt.Errorf("too many ranks in FEN %q", fen)
			}
		case ch >= '1' && ch <= '8':
			sq += int(ch - '0')
		default:
			color := White
			upper := ch
			if ch >= 'a' && ch <= 'z' {
				color = Black
				upper = ch - 'a' + 'A'
			}
			idx := strings.IndexRune(pieceChars, upper)
			if idx < 0 {
				return p, fmt.Errorf("bad piece %q in FEN %q", ch, fen)
			}
			if sq < 0 || sq > 63 {
				return p, fmt.Errorf("square overflow in FEN %q", fen)
			}
			p.put(sq, color, PieceType(idx))
			sq++
		}
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			p.stm = White
		case "b":
			p.stm = Black
		default:
			return p, fmt.Errorf("bad side to move %q in FEN %q", fields[1], fen)
		}
	}
	return p, nil
}

func (p *Position) put(sq int, c Color, pt PieceType) {
	bb := SquareBB(sq)
	p.byColor[c] |= bb
	p.byPiece[pt] |= bb
	p.board[sq] = pt
}

// Pieces returns the occupancy mask of all pieces.
func (p *Position) Pieces() Bitboard {
	return p.byColor[White] | p.byColor[Black]
}

// PiecesByColor returns the occupancy mask of one color.
func (p *Position) PiecesByColor(c Color) Bitboard {
	return p.byColor[c]
}

// PiecesByType returns the occupancy mask of one piece type, both colors.
func (p *Position) PiecesByType(pt PieceType) Bitboard {
	return p.byPiece[pt]
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color {
	return p.stm
}

// PieceOn returns the piece type on sq, or NoPiece.
func (p *Position) PieceOn(sq int) PieceType {
	return p.board[sq]
}

// pushDelta is the square increment of a single pawn push for c.
func pushDelta(c Color) int {
	if c == White {
		return 8
	}
	return -8
}

// Apply plays a pre-validated move. promo is the promotion piece type or
// NoPiece. The caller owns st; passing it back to Undo restores the
// position. Castling is recognized as a two-file king move and en passant
// as a diagonal pawn move onto the en-passant square.
func (p *Position) Apply(from, to int, promo PieceType, st *State) {
	us := p.stm
	them := us.Other()
	fromBB, toBB := SquareBB(from), SquareBB(to)
	pt := p.board[from]
	if pt == NoPiece {
		panic(fmt.Sprintf("apply: no piece on %d", from))
	}

	st.ep = p.ep
	st.captured = NoPiece
	st.capturedSq = int8(to)

	if pt == Pawn && p.ep >= 0 && to == int(p.ep) && fileOf(from) != fileOf(to) {
		capSq := to - pushDelta(us)
		st.captured = Pawn
		st.capturedSq = int8(capSq)
		capBB := SquareBB(capSq)
		p.byColor[them] &^= capBB
		p.byPiece[Pawn] &^= capBB
		p.board[capSq] = NoPiece
	} else if p.byColor[them]&toBB != 0 {
		captured := p.board[to]
		st.captured = captured
		p.byColor[them] &^= toBB
		p.byPiece[captured] &^= toBB
	}

	p.byColor[us] ^= fromBB | toBB
	p.byPiece[pt] ^= fromBB | toBB
	p.board[from] = NoPiece
	p.board[to] = pt

	// Castling: move the rook across the king.
	if pt == King && fileOf(to)-fileOf(from) == 2 {
		p.moveRook(us, from+3, from+1)
	} else if pt == King && fileOf(from)-fileOf(to) == 2 {
		p.moveRook(us, from-4, from-1)
	}

	if promo != NoPiece {
		p.byPiece[Pawn] &^= toBB
		p.byPiece[promo] |= toBB
		p.board[to] = promo
	}

	p.ep = -1
	if pt == Pawn && (to-from == 16 || from-to == 16) {
		p.ep = int8(from + pushDelta(us))
	}
	p.stm = them
}

// Undo reverts a move previously played by Apply with the same arguments
// and State.
func (p *Position) Undo(from, to int, promo PieceType, st *State) {
	them := p.stm
	us := them.Other()
	fromBB, toBB := SquareBB(from), SquareBB(to)
	pt := p.board[to]

	if promo != NoPiece {
		p.byPiece[promo] &^= toBB
		p.byPiece[Pawn] |= toBB
		pt = Pawn
	}

	if pt == King && fileOf(to)-fileOf(from) == 2 {
		p.moveRook(us, from+1, from+3)
	} else if pt == King && fileOf(from)-fileOf(to) == 2 {
		p.moveRook(us, from-1, from-4)
	}

	p.byColor[us] ^= fromBB | toBB
	p.byPiece[pt] ^= fromBB | toBB
	p.board[to] = NoPiece
	p.board[from] = pt

	if st.captured != NoPiece {
		capBB := SquareBB(int(st.capturedSq))
		p.byColor[them] |= capBB
		p.byPiece[st.captured] |= capBB
		p.board[st.capturedSq] = st.captured
	}

	p.ep = st.ep
	p.stm = us
}

func (p *Position) moveRook(c Color, from, to int) {
	bb := SquareBB(from) | SquareBB(to)
	p.byColor[c] ^= bb
	p.byPiece[Rook] ^= bb
	p.board[from] = NoPiece
	p.board[to] = Rook
}
