package store

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when an index entry is absent or has size zero.
	ErrNotFound = errors.New("store: file not found")

	// ErrCorrupt is returned when a block chain fails a consistency check.
	// Corruption is terminal for the read; the content is static so retrying
	// cannot succeed.
	ErrCorrupt = errors.New("store: corrupt block chain")
)

// NotFoundError identifies the logical file that does not exist.
type NotFoundError struct {
	Index int
	File  int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: file %d in index %d not found", e.File, e.Index)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// CorruptError describes the block that failed validation.
type CorruptError struct {
	Index  int
	File   int
	Block  int
	Part   int
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("store: corrupt chain for file %d in index %d at block %d (part %d): %s",
		e.File, e.Index, e.Block, e.Part, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return ErrCorrupt
}
