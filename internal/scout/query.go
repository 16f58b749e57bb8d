// Package scout compiles declarative queries into rule programs and runs
// them over a memory-mapped game database with a partitioned parallel scan.
package scout

import (
	"encoding/json"
	"fmt"

	"github.com/freeeve/scout/internal/chess"
	"github.com/freeeve/scout/internal/db"
)

// Rule is one opcode of a compiled query program. A well-formed program is
// a sequence of checks terminated by RuleEnd (reaching it means the
// position matches) or consisting solely of RuleNone (empty query, matches
// nothing).
type Rule uint8

const (
	RuleNone Rule = iota
	RulePattern
	RuleMaterial
	RuleWhite
	RuleBlack
	RuleResult
	RuleEnd
)

// PiecePattern constrains one piece type to an exact occupancy mask.
type PiecePattern struct {
	Type chess.PieceType
	Mask chess.Bitboard
}

// Pattern is the piece-placement constraint compiled from a query's FEN.
// A position matches only when its masks equal these exactly; a position
// holding the pattern plus extra pieces does not match.
type Pattern struct {
	All    chess.Bitboard
	White  chess.Bitboard
	Pieces []PiecePattern
}

// Query is the JSON query payload. All fields are optional; unknown fields
// in the payload are ignored.
type Query struct {
	FEN      string `json:"fen"`
	Material string `json:"material"`
	STM      string `json:"stm"`
	Result   string `json:"result"`
}

// ParseError wraps a malformed query payload error so the front end can
// tell it apart from engine decode failures.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Context is everything a scan shares read-only across workers: the move
// array, the compiled rule program with its operands, and the starting
// position every game is replayed from. It is immutable once compiled.
type Context struct {
	Moves   []db.Move
	Rules   []Rule
	Pattern Pattern
	MatKey  chess.MaterialKey
	Result  db.GameResult
	Start   chess.Position
}

// Compile parses a JSON query payload and compiles it against the given
// move array. Malformed JSON yields a *ParseError; invalid FEN or material
// strings surface the chess package's error as-is.
func Compile(payload []byte, moves []db.Move) (*Context, error) {
	var q Query
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, &ParseError{Err: err}
	}
	return CompileQuery(q, moves)
}

// CompileQuery compiles an already-parsed query. Rules are emitted in the
// fixed order pattern, material, side-to-move, result, and the program is
// terminated with RuleEnd, or with RuleNone when no field produced a rule.
// An empty query therefore compiles to a program that never matches.
func CompileQuery(q Query, moves []db.Move) (*Context, error) {
	sc := &Context{
		Moves: moves,
		Start: chess.NewStartingPosition(),
	}

	if q.FEN != "" {
		pos, err := chess.ParseFEN(q.FEN)
		if err != nil {
			return nil, err
		}
		sc.Pattern.All = pos.Pieces()
		sc.Pattern.White = pos.PiecesByColor(chess.White)
		for pt := chess.Pawn; pt <= chess.King; pt++ {
			if mask := pos.PiecesByType(pt); mask != 0 {
				sc.Pattern.Pieces = append(sc.Pattern.Pieces, PiecePattern{Type: pt, Mask: mask})
			}
		}
		sc.Rules = append(sc.Rules, RulePattern)
	}

	if q.Material != "" {
		key, err := chess.ParseMaterial(q.Material)
		if err != nil {
			return nil, err
		}
		sc.MatKey = key
		sc.Rules = append(sc.Rules, RuleMaterial)
	}

	if q.STM != "" {
		if q.STM == "WHITE" {
			sc.Rules = append(sc.Rules, RuleWhite)
		} else {
			sc.Rules = append(sc.Rules, RuleBlack)
		}
	}

	if q.Result != "" {
		// Unrecognized result strings are dropped, not rejected.
		if result, ok := db.ParseResult(q.Result); ok {
			sc.Result = result
			sc.Rules = append(sc.Rules, RuleResult)
		}
	}

	if len(sc.Rules) > 0 {
		sc.Rules = append(sc.Rules, RuleEnd)
	} else {
		sc.Rules = append(sc.Rules, RuleNone)
	}
	return sc, nil
}
