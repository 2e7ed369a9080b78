package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrFileNotFound is returned when no descriptor matches a name hash.
	ErrFileNotFound = errors.New("archive: file not found")

	// ErrCorrupt is returned when the container header or descriptor table
	// is inconsistent with the data.
	ErrCorrupt = errors.New("archive: corrupt container")

	// ErrDecompression is returned when the archive body or a file within it
	// cannot be decompressed.
	ErrDecompression = errors.New("archive: decompression failed")
)

// FileNotFoundError identifies the missing file.
type FileNotFoundError struct {
	Name string // empty when looked up by hash
	Hash int32
}

func (e *FileNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("archive: file %q (hash %d) not found", e.Name, e.Hash)
	}
	return fmt.Sprintf("archive: file with hash %d not found", e.Hash)
}

func (e *FileNotFoundError) Unwrap() error {
	return ErrFileNotFound
}
