package codec

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
)

// Gzip compresses a loose cache file (models, animation frames, midis, maps).
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Gunzip decompresses a loose cache file, reading at most maxSize bytes.
// Set maxSize to 0 to disable the limit.
func Gunzip(data []byte, maxSize int) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer zr.Close()

	if maxSize <= 0 || maxSize > math.MaxInt-1 {
		maxSize = math.MaxInt - 1
	}
	out, err := io.ReadAll(&io.LimitedReader{R: zr, N: int64(maxSize) + 1})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if len(out) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeMismatch, maxSize)
	}
	return out, nil
}
