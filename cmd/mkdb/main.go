package main

import (
	"flag"
	"path/filepath"
	"strconv"
	"time"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/freeeve/scout/internal/db"
	"github.com/freeeve/scout/internal/logx"
)

func main() {
	var (
		outPath   = flag.String("out", "./games.scoutdb", "output database file")
		ratingMin = flag.Int("min-rating", 0, "skip games where either player is rated below this (0 = off)")
		compress  = flag.Bool("compress", false, "also write a zstd-compressed copy of the database")
	)
	flag.Parse()

	logger := logx.NewLogger()

	files := flag.Args()
	if len(files) == 0 {
		logger.Fatal().Msg("no PGN files given (.pgn or .pgn.zst)")
	}

	w, err := db.NewWriter(*outPath)
	if err != nil {
		logger.Fatal().Err(err).Str("out", *outPath).Msg("create database")
	}

	start := time.Now()
	var games, skipped int64
	for _, path := range files {
		g, s, err := convertFile(logger, w, path, *ratingMin)
		if err != nil {
			logger.Fatal().Err(err).Str("file", path).Msg("convert failed")
		}
		games += g
		skipped += s
	}

	if err := w.Close(); err != nil {
		logger.Fatal().Err(err).Msg("finalize database")
	}

	elapsed := time.Since(start)
	logger.Info().
		Str("out", *outPath).
		Int64("games", games).
		Int64("skipped", skipped).
		Uint64("moves", w.MoveCount()).
		Dur("elapsed", elapsed).
		Float64("games_per_sec", float64(games)/elapsed.Seconds()).
		Msg("database written")

	if *compress {
		zstPath, err := db.CompressFile(*outPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("compress database")
		}
		logger.Info().Str("out", zstPath).Msg("compressed copy written")
	}
}

// convertFile streams one PGN file into the writer and returns the counts
// of converted and skipped games.
func convertFile(logger zerolog.Logger, w *db.Writer, path string, ratingMin int) (games, skipped int64, err error) {
	logger.Info().Str("file", path).Msg("starting file convert")

	startTime := time.Now()
	lastLog := time.Now()
	moves := make([]db.Move, 0, db.MaxGamePlies)

	parser := pgn.Games(path)
	for game := range parser.Games {
		if ratingMin > 0 {
			whiteRating := parseRating(game.Tags["WhiteElo"])
			blackRating := parseRating(game.Tags["BlackElo"])
			if whiteRating < ratingMin || blackRating < ratingMin {
				skipped++
				continue
			}
		}

		// Unrecognized result tags are stored as unknown, not dropped.
		result, ok := db.ParseResult(game.Tags["Result"])
		if !ok {
			result = db.ResultUnknown
		}

		if len(game.Moves) > db.MaxGamePlies {
			logger.Warn().Str("file", filepath.Base(path)).Int("plies", len(game.Moves)).Msg("game too long, skipped")
			skipped++
			continue
		}

		moves = moves[:0]
		for _, mv := range game.Moves {
			moves = append(moves, db.EncodeMove(int(mv.From), int(mv.To), promoCode(mv)))
		}
		if err := w.WriteGame(result, moves); err != nil {
			return games, skipped, err
		}
		games++

		if time.Since(lastLog) > 10*time.Second {
			elapsed := time.Since(startTime)
			logger.Info().
				Str("file", filepath.Base(path)).
				Int64("games", games).
				Int64("skipped", skipped).
				Float64("games_per_sec", float64(games)/elapsed.Seconds()).
				Msg("convert progress")
			lastLog = time.Now()
		}
	}
	if err := parser.Err(); err != nil {
		return games, skipped, err
	}

	logger.Info().
		Str("file", filepath.Base(path)).
		Int64("games", games).
		Int64("skipped", skipped).
		Dur("elapsed", time.Since(startTime)).
		Msg("file convert complete")
	return games, skipped, nil
}

func promoCode(mv pgn.Mv) byte {
	switch mv.Promo {
	case pgn.PromoQueen:
		return db.PromoQueen
	case pgn.PromoRook:
		return db.PromoRook
	case pgn.PromoBishop:
		return db.PromoBishop
	case pgn.PromoKnight:
		return db.PromoKnight
	}
	return db.PromoNone
}

func parseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	r, _ := strconv.Atoi(s)
	return r
}
