// Package codec implements the block compressors used by cache archives.
//
// Archives store compressed streams without their 4-byte format magic; the
// magic is re-added before decompression. Every Codec therefore produces and
// consumes headerless streams and knows its own magic.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MagicSize is the number of leading stream bytes an archive strips.
const MagicSize = 4

// Sentinel errors.
var (
	// ErrDecompression is returned when a stream cannot be decompressed.
	ErrDecompression = errors.New("codec: decompression failed")

	// ErrSizeMismatch is returned when decompressed output does not match
	// the size declared by the container.
	ErrSizeMismatch = errors.New("codec: decompressed size mismatch")
)

// Codec compresses and decompresses headerless streams.
type Codec interface {
	// Name returns the configuration name of the codec.
	Name() string

	// Magic returns the stream prefix removed by Compress and restored by
	// Decompress.
	Magic() [MagicSize]byte

	// Compress returns the compressed form of data without the magic prefix.
	Compress(data []byte) ([]byte, error)

	// Decompress restores the magic prefix, decompresses body and requires
	// exactly size bytes of output.
	Decompress(body []byte, size int) ([]byte, error)
}

// Lookup returns the codec registered under name. zstdOpts apply only when
// name selects zstd.
func Lookup(name string, zstdOpts ...ZstdOption) (Codec, error) {
	switch name {
	case "", "bzip2":
		return Bzip2(), nil
	case "zstd":
		return NewZstd(zstdOpts...), nil
	case "lz4":
		return LZ4(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
}

// withMagic returns a reader that yields magic followed by body.
func withMagic(magic [MagicSize]byte, body []byte) io.Reader {
	return io.MultiReader(bytes.NewReader(magic[:]), bytes.NewReader(body))
}

// stripMagic removes magic from a freshly compressed stream.
func stripMagic(name string, magic [MagicSize]byte, stream []byte) ([]byte, error) {
	if !bytes.HasPrefix(stream, magic[:]) {
		return nil, fmt.Errorf("codec: %s stream does not start with its magic", name)
	}
	return stream[MagicSize:], nil
}

// readExact reads exactly size bytes from r and requires EOF afterwards.
func readExact(r io.Reader, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrSizeMismatch, size)
	}
	out := make([]byte, size)
	n, err := io.ReadFull(r, out)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrSizeMismatch, n, size)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	var extra [1]byte
	m, err := r.Read(extra[:])
	for m == 0 && err == nil {
		m, err = r.Read(extra[:])
	}
	if m > 0 {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeMismatch, size)
	}
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return out, nil
}
