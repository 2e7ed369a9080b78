package gamecache

import (
	"log/slog"
	"net/http"

	"github.com/meigma/gamecache/cache"
	"github.com/meigma/gamecache/config"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for the manager and the packages it drives.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCodec selects the archive codec by name: "bzip2" (default), "zstd" or
// "lz4".
func WithCodec(name string) Option {
	return func(m *Manager) {
		m.codecName = name
	}
}

// WithItemCacheCapacity sets the number of decoded items kept in memory.
// Values below 1 use cache.DefaultCapacity.
func WithItemCacheCapacity(n int) Option {
	return func(m *Manager) {
		m.itemCapacity = n
	}
}

// WithObjectCacheCapacity sets the number of decoded objects kept in memory.
// Values below 1 use cache.DefaultCapacity.
func WithObjectCacheCapacity(n int) Option {
	return func(m *Manager) {
		m.objectCapacity = n
	}
}

// WithSynchronizedCaches guards the record caches with a mutex so typed
// accessors may be called from several goroutines.
//
// By default the caches are unguarded and a Manager must be used by one
// goroutine at a time after bootstrap.
func WithSynchronizedCaches(enabled bool) Option {
	return func(m *Manager) {
		m.synchronized = enabled
	}
}

// WithOpcodePolicy sets how record decoders treat unknown opcodes
// (default: config.PolicyFail).
func WithOpcodePolicy(p config.Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithMaxFileSize limits the size of any stored or decompressed loose file.
// It is applied to the block store by Open and Load and to gzip output.
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit int) Option {
	return func(m *Manager) {
		m.maxFileSize = limit
	}
}

// WithMaxDecoderMemory limits the memory used by each zstd decoder when the
// zstd codec is selected. Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(m *Manager) {
		m.maxDecoderMemory = limit
	}
}

// WithPreload opens the given archives during bootstrap instead of on first
// use.
func WithPreload(ids ...int) Option {
	return func(m *Manager) {
		m.preload = append(m.preload, ids...)
	}
}

// WithHTTPClient sets the client used by OpenURL.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = c
	}
}

// newRecords returns a record cache honouring the synchronization option.
func newRecords[V any](synchronized bool, capacity int) cache.Records[int, V] {
	if synchronized {
		return cache.NewSynchronized[int, V](capacity)
	}
	return cache.New[int, V](capacity)
}
