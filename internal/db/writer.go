package db

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
)

// Writer produces a scout database file. Games are appended one at a time;
// Close backpatches the header with the final counts and checksum.
type Writer struct {
	f         *os.File
	buf       *bufio.Writer
	crc       hash.Hash32
	moveCount uint64
	gameCount uint64
}

// NewWriter creates (truncating) the database at path and writes the
// leading sentinel every database starts with.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		f:   f,
		buf: bufio.NewWriterSize(f, 1<<20),
		crc: crc32.NewIEEE(),
	}
	// Placeholder header, rewritten on Close.
	if _, err := w.buf.Write(make([]byte, HeaderSize)); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writeMove(MoveNone); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeMove(m Move) error {
	var b [MoveSize]byte
	binary.LittleEndian.PutUint32(b[:], uint32(m))
	w.crc.Write(b[:])
	w.moveCount++
	_, err := w.buf.Write(b[:])
	return err
}

// WriteGame appends one game record: result marker, moves, sentinel.
// Games longer than MaxGamePlies are rejected; the scan side's state
// arenas depend on that bound.
func (w *Writer) WriteGame(result GameResult, moves []Move) error {
	if result < ResultWhiteWin || result > ResultUnknown {
		return fmt.Errorf("db: bad game result %d", result)
	}
	if len(moves) > MaxGamePlies {
		return fmt.Errorf("db: game of %d plies exceeds limit %d", len(moves), MaxGamePlies)
	}
	if err := w.writeMove(ResultMarker(result)); err != nil {
		return err
	}
	for _, m := range moves {
		if m == MoveNone {
			return fmt.Errorf("db: sentinel move inside game")
		}
		if err := w.writeMove(m); err != nil {
			return err
		}
	}
	if err := w.writeMove(MoveNone); err != nil {
		return err
	}
	w.gameCount++
	return nil
}

// MoveCount returns the number of move slots written so far, markers and
// sentinels included.
func (w *Writer) MoveCount() uint64 { return w.moveCount }

// GameCount returns the number of games written so far.
func (w *Writer) GameCount() uint64 { return w.gameCount }

// Close flushes the body, rewrites the header with final counts and the
// body checksum, and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return err
	}
	h := Header{
		Version:   Version,
		MoveCount: w.moveCount,
		GameCount: w.gameCount,
		Checksum:  w.crc.Sum32(),
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		w.f.Close()
		return err
	}
	if _, err := w.f.Write(encodeHeader(&h)); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
