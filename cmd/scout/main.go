package main

import (
	"flag"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/freeeve/scout/internal/db"
	"github.com/freeeve/scout/internal/logx"
	"github.com/freeeve/scout/internal/scout"
)

func main() {
	var (
		dbPath    = flag.String("db", "./data/games.scoutdb", "scout database file (.scoutdb or .scoutdb.zst)")
		workers   = flag.Int("workers", runtime.NumCPU(), "number of scan workers")
		query     = flag.String("query", "", "JSON query (reads stdin when empty)")
		queryFile = flag.String("query-file", "", "file holding the JSON query")
	)
	flag.Parse()

	logger := logx.NewLogger()

	payload := []byte(*query)
	if *queryFile != "" {
		b, err := os.ReadFile(*queryFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("read query file")
		}
		payload = b
	} else if *query == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal().Err(err).Msg("read query from stdin")
		}
		payload = b
	}

	// Compressed databases are expanded to a temp file so they can be
	// mapped; the temp copy is removed after the scan.
	path := *dbPath
	if db.IsCompressed(path) {
		tmp, err := db.DecompressToTemp(path)
		if err != nil {
			logger.Fatal().Err(err).Str("db", path).Msg("decompress database")
		}
		defer os.Remove(tmp)
		logger.Info().Str("db", path).Str("tmp", tmp).Msg("decompressed database")
		path = tmp
	}

	f, err := db.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Str("db", path).Msg("open database")
	}

	sc, err := scout.Compile(payload, f.Moves())
	if err != nil {
		logger.Fatal().Err(err).Msg("compile query")
	}

	scanner := scout.New(scout.Config{Workers: *workers, Logger: logger}, sc)
	logger.Info().
		Str("db", *dbPath).
		Uint64("games", f.GameCount()).
		Int("moves", len(f.Moves())).
		Int("workers", scanner.Workers()).
		Msg("scan started")

	start := time.Now()
	counters, err := scanner.Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("scan failed")
	}

	report, err := scout.Finalize(f, counters, start, os.Stderr)
	if err != nil {
		logger.Fatal().Err(err).Msg("release database")
	}
	report.Log(logger)
}
