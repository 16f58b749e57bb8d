package db

import (
	"fmt"
	"os"
	"unsafe"
)

// File is a read-only memory-mapped scout database. The whole scan shares
// one File; Close unmaps it exactly once and is safe to call again.
type File struct {
	path   string
	header Header
	data   []byte // full mapping, header included
	moves  []Move // body viewed as moves
	f      *os.File
}

// Open maps the database at path read-only, validates the header against
// the mapped length, and verifies the body checksum once up front.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size < HeaderSize {
		f.Close()
		return nil, ErrTruncated
	}

	data, err := mmap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}

	h, err := decodeHeader(data[:HeaderSize])
	if err != nil {
		munmap(data)
		f.Close()
		return nil, err
	}
	body := data[HeaderSize:]
	if uint64(len(body)) != h.MoveCount*MoveSize {
		munmap(data)
		f.Close()
		return nil, fmt.Errorf("%w: header says %d moves, body holds %d bytes",
			ErrTruncated, h.MoveCount, len(body))
	}
	if bodyChecksum(body) != h.Checksum {
		munmap(data)
		f.Close()
		return nil, ErrChecksum
	}

	// The mapping is page-aligned and the header keeps the body 4-byte
	// aligned, so the little-endian move array can be viewed in place.
	var moves []Move
	if len(body) > 0 {
		moves = unsafe.Slice((*Move)(unsafe.Pointer(&body[0])), h.MoveCount)
	}

	return &File{
		path:   path,
		header: *h,
		data:   data,
		moves:  moves,
		f:      f,
	}, nil
}

// Moves returns the database's move array, markers and sentinels included.
// The slice is only valid until Close.
func (d *File) Moves() []Move {
	return d.moves
}

// GameCount returns the number of game records per the header.
func (d *File) GameCount() uint64 {
	return d.header.GameCount
}

// Path returns the file path the database was opened from.
func (d *File) Path() string {
	return d.path
}

// Close unmaps the database and closes the underlying file. Idempotent.
func (d *File) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.data != nil {
		err = munmap(d.data)
		d.data = nil
		d.moves = nil
	}
	if d.f != nil {
		if closeErr := d.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		d.f = nil
	}
	return err
}
