package db_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/freeeve/scout/internal/db"
)

func mustUCI(t *testing.T, uci string) db.Move {
	t.Helper()
	m, err := db.MoveFromUCI(uci)
	if err != nil {
		t.Fatalf("MoveFromUCI(%q): %v", uci, err)
	}
	return m
}

func writeTestDB(t *testing.T, path string) (moveCount, gameCount uint64) {
	t.Helper()
	w, err := db.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteGame(db.ResultWhiteWin, []db.Move{
		mustUCI(t, "e2e4"), mustUCI(t, "e7e5"), mustUCI(t, "g1f3"),
	}); err != nil {
		t.Fatalf("WriteGame: %v", err)
	}
	if err := w.WriteGame(db.ResultDraw, []db.Move{
		mustUCI(t, "d2d4"), mustUCI(t, "d7d5"),
	}); err != nil {
		t.Fatalf("WriteGame: %v", err)
	}
	moveCount, gameCount = w.MoveCount(), w.GameCount()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return moveCount, gameCount
}

func TestWriterOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.scoutdb")
	moveCount, gameCount := writeTestDB(t, path)

	// 1 leading sentinel + (1 marker + 3 moves + 1 sentinel) + (1+2+1)
	if moveCount != 10 {
		t.Errorf("MoveCount = %d, want 10", moveCount)
	}
	if gameCount != 2 {
		t.Errorf("GameCount = %d, want 2", gameCount)
	}

	f, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	moves := f.Moves()
	if uint64(len(moves)) != moveCount {
		t.Fatalf("len(Moves) = %d, want %d", len(moves), moveCount)
	}
	if f.GameCount() != gameCount {
		t.Errorf("GameCount = %d, want %d", f.GameCount(), gameCount)
	}

	if moves[0] != db.MoveNone {
		t.Errorf("database must start with a sentinel, got %x", moves[0])
	}
	if got := moves[1].Result(); got != db.ResultWhiteWin {
		t.Errorf("game 1 result = %v, want 1-0", got)
	}
	if moves[2] != mustUCI(t, "e2e4") {
		t.Errorf("game 1 first move = %x", moves[2])
	}
	if moves[5] != db.MoveNone {
		t.Errorf("game 1 must end with a sentinel")
	}
	if got := moves[6].Result(); got != db.ResultDraw {
		t.Errorf("game 2 result = %v, want 1/2-1/2", got)
	}
	if moves[len(moves)-1] != db.MoveNone {
		t.Errorf("database must end with a sentinel")
	}
}

func TestWriterRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.scoutdb")
	w, err := db.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	tooLong := make([]db.Move, db.MaxGamePlies+1)
	for i := range tooLong {
		tooLong[i] = db.EncodeMove(1, 2, db.PromoNone)
	}
	if err := w.WriteGame(db.ResultDraw, tooLong); err == nil {
		t.Error("game over MaxGamePlies must be rejected")
	}
	if err := w.WriteGame(db.ResultInvalid, nil); err == nil {
		t.Error("invalid result must be rejected")
	}
	if err := w.WriteGame(db.ResultDraw, []db.Move{db.MoveNone}); err == nil {
		t.Error("sentinel inside a game must be rejected")
	}
}

func TestOpenCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.scoutdb")
	writeTestDB(t, path)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Bad magic
	bad := append([]byte(nil), raw...)
	bad[0] = 'X'
	badPath := filepath.Join(dir, "badmagic.scoutdb")
	if err := os.WriteFile(badPath, bad, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Open(badPath); !errors.Is(err, db.ErrBadMagic) {
		t.Errorf("Open with bad magic = %v, want ErrBadMagic", err)
	}

	// Truncated body
	truncPath := filepath.Join(dir, "trunc.scoutdb")
	if err := os.WriteFile(truncPath, raw[:len(raw)-4], 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Open(truncPath); !errors.Is(err, db.ErrTruncated) {
		t.Errorf("Open truncated = %v, want ErrTruncated", err)
	}

	// Flipped body byte
	flip := append([]byte(nil), raw...)
	flip[len(flip)-6] ^= 0xFF
	flipPath := filepath.Join(dir, "flip.scoutdb")
	if err := os.WriteFile(flipPath, flip, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Open(flipPath); !errors.Is(err, db.ErrChecksum) {
		t.Errorf("Open with flipped byte = %v, want ErrChecksum", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.scoutdb")
	writeTestDB(t, path)

	f, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.scoutdb")
	moveCount, _ := writeTestDB(t, path)

	zstPath, err := db.CompressFile(path)
	if err != nil {
		t.Fatalf("CompressFile: %v", err)
	}
	if !db.IsCompressed(zstPath) {
		t.Fatalf("compressed path %q not recognized", zstPath)
	}

	tmp, err := db.DecompressToTemp(zstPath)
	if err != nil {
		t.Fatalf("DecompressToTemp: %v", err)
	}
	defer os.Remove(tmp)

	f, err := db.Open(tmp)
	if err != nil {
		t.Fatalf("Open decompressed: %v", err)
	}
	defer f.Close()
	if uint64(len(f.Moves())) != moveCount {
		t.Errorf("decompressed db has %d moves, want %d", len(f.Moves()), moveCount)
	}
}
