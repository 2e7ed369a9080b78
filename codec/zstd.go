package codec

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxDecoderMemory is the default zstd decoder memory limit (64MB).
const DefaultMaxDecoderMemory = 64 << 20

// ZstdOption configures the zstd codec.
type ZstdOption func(*zstdCodec)

// WithMaxDecoderMemory limits the maximum memory used by each zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) ZstdOption {
	return func(c *zstdCodec) {
		c.maxDecoderMemory = limit
	}
}

// WithDecoderLowmem sets whether decoders use low-memory mode (default: false).
func WithDecoderLowmem(enabled bool) ZstdOption {
	return func(c *zstdCodec) {
		c.decoderLowmem = enabled
	}
}

type zstdCodec struct {
	maxDecoderMemory uint64
	decoderLowmem    bool
	pool             sync.Pool

	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error
}

// NewZstd returns a zstd codec with pooled decoders.
func NewZstd(opts ...ZstdOption) Codec {
	c := &zstdCodec{maxDecoderMemory: DefaultMaxDecoderMemory}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *zstdCodec) Name() string {
	return "zstd"
}

func (c *zstdCodec) Magic() [MagicSize]byte {
	return [MagicSize]byte{0x28, 0xb5, 0x2f, 0xfd}
}

func (c *zstdCodec) Compress(data []byte) ([]byte, error) {
	c.encOnce.Do(func() {
		c.enc, c.encErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
	})
	if c.encErr != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", c.encErr)
	}
	return stripMagic(c.Name(), c.Magic(), c.enc.EncodeAll(data, nil))
}

func (c *zstdCodec) Decompress(body []byte, size int) ([]byte, error) {
	dec, release, err := c.get(withMagic(c.Magic(), body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer release()
	return readExact(dec, size)
}

// get returns a decoder configured to read from r.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (c *zstdCodec) get(r io.Reader) (*zstd.Decoder, func(), error) {
	if dec, ok := c.pool.Get().(*zstd.Decoder); ok {
		if err := dec.Reset(r); err == nil {
			return dec, func() {
				_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
				c.pool.Put(dec)
			}, nil
		}
		dec.Close()
	}

	dec, err := c.newDecoder(r)
	if err != nil {
		return nil, nil, err
	}
	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		c.pool.Put(dec)
	}, nil
}

// newDecoder creates a new zstd decoder with the configured memory limit.
func (c *zstdCodec) newDecoder(r io.Reader) (*zstd.Decoder, error) {
	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(c.decoderLowmem),
	}
	if c.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(c.maxDecoderMemory))
	}
	return zstd.NewReader(r, opts...)
}
