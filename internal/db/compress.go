package db

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// IsCompressed reports whether path names a zstd-compressed database.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// CompressFile writes a zstd-compressed copy of the database at path,
// named path+".zst", for distribution. Returns the compressed path.
func CompressFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	outPath := path + ".zst"
	dst, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		dst.Close()
		return "", err
	}
	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		dst.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := enc.Close(); err != nil {
		dst.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}

// DecompressToTemp expands a zstd-compressed database into a temporary
// file so it can be memory-mapped. The caller removes the file when done.
func DecompressToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dec, err := zstd.NewReader(src)
	if err != nil {
		return "", err
	}
	defer dec.Close()

	base := strings.TrimSuffix(filepath.Base(path), ".zst")
	dst, err := os.CreateTemp("", base+".*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, dec); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
