// Package fingerprint computes the OpenSubtitles movie hash used as a
// cross-client content identity key.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// ChunkSize is the number of bytes sampled from each end of the file.
	ChunkSize = 65536
	// MinSize is the smallest file that can be fingerprinted.
	MinSize = 2 * ChunkSize

	wordSize = 8
)

// Compute returns the 16 hex digit fingerprint for the file at path. The
// boolean is false when the file is too small or cannot be read.
func Compute(path string) (string, bool) {
	file, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		return "", false
	}
	sum, err := Sum(file, info.Size())
	if err != nil {
		return "", false
	}
	return Format(sum), true
}

// Sum seeds the accumulator with size and adds the first and last ChunkSize
// bytes as little-endian 64-bit words, wrapping on overflow.
func Sum(r io.ReaderAt, size int64) (uint64, error) {
	if size < MinSize {
		return 0, fmt.Errorf("fingerprint: file too small (%d bytes, need %d)", size, MinSize)
	}

	acc := uint64(size)
	buf := make([]byte, ChunkSize)

	for _, offset := range []int64{0, max(0, size-ChunkSize)} {
		if _, err := r.ReadAt(buf, offset); err != nil {
			return 0, fmt.Errorf("fingerprint: read at %d: %w", offset, err)
		}
		for i := 0; i < ChunkSize; i += wordSize {
			acc += binary.LittleEndian.Uint64(buf[i : i+wordSize])
		}
	}
	return acc, nil
}

// Format renders a fingerprint as zero-padded lowercase hex.
func Format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
