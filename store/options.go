package store

import "log/slog"

// DefaultMaxFileSize bounds the size a single index entry may declare (16MB,
// the largest value a 24-bit size field can hold).
const DefaultMaxFileSize = 1<<24 - 1

// Option configures a Store.
type Option func(*Store)

// WithMaxFileSize rejects index entries that declare more than limit bytes.
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit int) Option {
	return func(s *Store) {
		if limit < 0 {
			limit = 0
		}
		s.maxFileSize = limit
	}
}

// WithLogger sets the logger used to report corrupt chains.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}
