package remote

import (
	"log/slog"
	"net/http"

	"github.com/meigma/gamecache/store"
)

// DefaultPageBlocks is the number of store blocks fetched per request when
// reading the data file.
const DefaultPageBlocks = 64

// DefaultPageCount is the number of data file pages kept in memory.
const DefaultPageCount = 256

// Option configures remote sources.
type Option func(*options)

type options struct {
	client     *http.Client
	headers    http.Header
	pageBlocks int
	pageCount  int
	storeOpts  []store.Option
	logger     *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		client:     http.DefaultClient,
		pageBlocks: DefaultPageBlocks,
		pageCount:  DefaultPageCount,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if o.client == nil {
		o.client = http.DefaultClient
	}
	return o
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// WithClient sets the HTTP client used for requests.
func WithClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(key, value)
	}
}

// WithPages sets how many store blocks are fetched per data file request and
// how many such pages are cached. A blocks value below 1 disables paging and
// issues one request per block read.
func WithPages(blocks, count int) Option {
	return func(o *options) {
		o.pageBlocks = blocks
		o.pageCount = count
	}
}

// WithStoreOptions passes options to the store built by Open.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// WithLogger sets the logger used by Open.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
