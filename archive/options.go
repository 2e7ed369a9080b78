package archive

import (
	"log/slog"

	"github.com/meigma/gamecache/codec"
)

// Option configures archive parsing and building.
type Option func(*options)

type options struct {
	codec  codec.Codec
	whole  bool
	logger *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{codec: codec.Bzip2()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec = codec.Bzip2()
	}
	return o
}

// log returns the logger, falling back to a discard logger if nil.
func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// WithCodec sets the block compressor (default: bzip2).
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithWholeCompression makes a Builder compress the whole archive body
// instead of each file. It has no effect on Parse.
func WithWholeCompression(enabled bool) Option {
	return func(o *options) {
		o.whole = enabled
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
