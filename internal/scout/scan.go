package scout

import (
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/scout/internal/chess"
	"github.com/freeeve/scout/internal/db"
)

// Counters is one worker's tally. Each worker owns its entry exclusively
// during the scan; the aggregator reads them only after all workers join.
type Counters struct {
	Moves   uint64
	Matches uint64
}

// stepResult is the outcome of evaluating the rule program against one
// position.
type stepResult uint8

const (
	stepContinue stepResult = iota // rule failed, try the next move
	stepNextGame                   // game cannot match, skip to its sentinel
	stepMatched                    // all rules passed
)

// Config configures a Scanner.
type Config struct {
	Workers int // degree of parallelism, default NumCPU
	Logger  zerolog.Logger
}

// Scanner replays every game in a database through the rule program, with
// the move array partitioned across workers. Workers share nothing mutable
// and never communicate; each runs to completion over its slice.
type Scanner struct {
	sc      *Context
	workers int
	log     zerolog.Logger
}

// New creates a Scanner over a compiled scan context.
func New(cfg Config, sc *Context) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Scanner{
		sc:      sc,
		workers: cfg.Workers,
		log:     cfg.Logger,
	}
}

// Workers returns the configured degree of parallelism.
func (s *Scanner) Workers() int {
	return s.workers
}

// Run scans the whole database and returns the per-worker counters once
// every worker has finished. Workers never fail; the error return exists
// for the group plumbing only.
func (s *Scanner) Run() ([]Counters, error) {
	counters := make([]Counters, s.workers)
	s.log.Debug().Int("workers", s.workers).Int("moves", len(s.sc.Moves)).Msg("scan workers started")

	var g errgroup.Group
	for i := 0; i < s.workers; i++ {
		idx := i
		g.Go(func() error {
			s.scanWorker(idx, &counters[idx])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counters, nil
}

// scanWorker replays all games whose adjusted start falls inside worker
// idx's slice of the move array.
//
// The nominal slice is an equal division of the array; the last worker
// absorbs the remainder. Raw division does not respect game boundaries, so
// the worker first advances past the first sentinel it meets (the game
// straddling its left edge belongs to the previous worker, which finishes
// any game it has started even past its own nominal end). Together these
// rules hand every game to exactly one worker regardless of the worker
// count.
func (s *Scanner) scanWorker(idx int, c *Counters) {
	moves := s.sc.Moves
	n := len(moves)

	chunk := n / s.workers
	cur := idx * chunk
	end := cur + chunk
	if idx == s.workers-1 {
		end = n
	}

	// Copy hot-path operands to locals.
	rules := s.sc.Rules
	pattern := s.sc.Pattern
	matKey := s.sc.MatKey
	target := s.sc.Result

	// Align on the next game: step past the first sentinel.
	for cur < n && moves[cur] != db.MoveNone {
		cur++
	}
	cur++

	var states [db.MaxGamePlies]chess.State

	// A game belongs to this worker when the sentinel that opens it (the
	// slot before its result marker) lies inside the nominal slice. A
	// started game is always consumed to its own sentinel, even past end.
	for cur < n && cur-1 < end {
		result := moves[cur].Result()
		pos := s.sc.Start
		si := 0
		cur++

		for cur < n && moves[cur] != db.MoveNone {
			from, to, promo := db.DecodeMove(moves[cur])
			pos.Apply(from, to, promoPiece(promo), &states[si])
			si++
			c.Moves++
			cur++

			switch evalRules(rules, &pos, &pattern, matKey, result, target) {
			case stepContinue:
			case stepMatched:
				c.Matches++
				cur = skipGame(moves, cur, c)
			case stepNextGame:
				cur = skipGame(moves, cur, c)
			}
		}

		// Past the game's sentinel, onto the next record.
		cur++
	}
}

// skipGame advances to the current game's sentinel, counting the skipped
// moves as replayed so totals stay invariant to short-circuiting.
func skipGame(moves []db.Move, cur int, c *Counters) int {
	for cur < len(moves) && moves[cur] != db.MoveNone {
		c.Moves++
		cur++
	}
	return cur
}

// evalRules runs the compiled program against the current position. Rules
// fail Continue (next move) except RuleResult, whose mismatch rules out
// the whole game. RuleEnd means every rule passed.
func evalRules(rules []Rule, pos *chess.Position, pattern *Pattern,
	matKey chess.MaterialKey, result, target db.GameResult) stepResult {

	for _, r := range rules {
		switch r {
		case RuleNone:
			return stepContinue

		case RulePattern:
			if pos.Pieces() != pattern.All || pos.PiecesByColor(chess.White) != pattern.White {
				return stepContinue
			}
			for _, pp := range pattern.Pieces {
				if pos.PiecesByType(pp.Type) != pp.Mask {
					return stepContinue
				}
			}

		case RuleMaterial:
			if pos.MaterialKey() != matKey {
				return stepContinue
			}

		case RuleWhite:
			if pos.SideToMove() != chess.White {
				return stepContinue
			}

		case RuleBlack:
			if pos.SideToMove() != chess.Black {
				return stepContinue
			}

		case RuleResult:
			// Result is constant across the game: a mismatch rules the
			// whole game out, not just this move.
			if result != target {
				return stepNextGame
			}

		case RuleEnd:
			return stepMatched
		}
	}
	return stepContinue
}

// promoPiece maps a move's promotion code to a piece type.
func promoPiece(promo byte) chess.PieceType {
	switch promo {
	case db.PromoQueen:
		return chess.Queen
	case db.PromoRook:
		return chess.Rook
	case db.PromoBishop:
		return chess.Bishop
	case db.PromoKnight:
		return chess.Knight
	}
	return chess.NoPiece
}
