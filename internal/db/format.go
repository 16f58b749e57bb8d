package db

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Scout database format
//
// A database is a 32-byte header followed by a flat little-endian array of
// uint32 moves: one leading MoveNone sentinel, then concatenated game
// records. Each record is [resultMarker, move_1..move_k, MoveNone]. There
// are no per-record length prefixes; record boundaries are found only by
// scanning for sentinels.
//
// Header layout:
//   Magic (4):      "SCDB"
//   Version (2):    1
//   Flags (2):      reserved
//   MoveCount (8):  uint32 slots in the body, markers and sentinels included
//   GameCount (8):  number of game records
//   Checksum (4):   CRC32 (IEEE) of the body
//   Reserved (4)

const (
	Magic      = "SCDB"
	Version    = 1
	HeaderSize = 32
	MoveSize   = 4

	// MaxGamePlies is the longest game a record may hold. Scan workers size
	// their state arenas to it; the writer rejects longer games.
	MaxGamePlies = 1024
)

var (
	ErrBadMagic   = errors.New("db: bad magic")
	ErrBadVersion = errors.New("db: unsupported version")
	ErrTruncated  = errors.New("db: truncated file")
	ErrChecksum   = errors.New("db: checksum mismatch")
)

// Header is the database file header.
type Header struct {
	Version   uint16
	Flags     uint16
	MoveCount uint64
	GameCount uint64
	Checksum  uint32
}

func encodeHeader(h *Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], h.MoveCount)
	binary.LittleEndian.PutUint64(buf[16:24], h.GameCount)
	binary.LittleEndian.PutUint32(buf[24:28], h.Checksum)
	return buf
}

func decodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, ErrTruncated
	}
	if string(buf[0:4]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, buf[0:4])
	}
	h := &Header{}
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, h.Version)
	}
	h.Flags = binary.LittleEndian.Uint16(buf[6:8])
	h.MoveCount = binary.LittleEndian.Uint64(buf[8:16])
	h.GameCount = binary.LittleEndian.Uint64(buf[16:24])
	h.Checksum = binary.LittleEndian.Uint32(buf[24:28])
	return h, nil
}

func bodyChecksum(body []byte) uint32 {
	return crc32.ChecksumIEEE(body)
}
