package gamecache

import (
	"errors"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/config"
	"github.com/meigma/gamecache/store"
	"github.com/meigma/gamecache/versionlist"
)

// Errors re-exported from store.
var (
	// ErrNotFound is returned when a stored file is absent or empty.
	ErrNotFound = store.ErrNotFound

	// ErrCorrupt is returned when a block chain fails validation.
	ErrCorrupt = store.ErrCorrupt
)

// Errors re-exported from archive and codec.
var (
	// ErrFileNotFound is returned when an archive has no file with the
	// requested name.
	ErrFileNotFound = archive.ErrFileNotFound

	// ErrArchiveCorrupt is returned when an archive container is malformed.
	ErrArchiveCorrupt = archive.ErrCorrupt

	// ErrArchiveDecompression is returned when archive contents cannot be
	// decompressed.
	ErrArchiveDecompression = archive.ErrDecompression

	// ErrDecompression is returned when a loose file cannot be decompressed.
	ErrDecompression = codec.ErrDecompression
)

// Errors re-exported from config and versionlist.
var (
	// ErrRecordNotFound is returned for record ids outside their table.
	ErrRecordNotFound = config.ErrNotFound

	// ErrTruncatedRecord is returned when a record ends mid-field.
	ErrTruncatedRecord = config.ErrTruncatedRecord

	// ErrUnknownOpcode is returned when a record contains an undefined opcode.
	ErrUnknownOpcode = config.ErrUnknownOpcode

	// ErrChecksum is returned when a file does not match its recorded
	// checksum or version.
	ErrChecksum = versionlist.ErrChecksum
)

// Sentinel errors specific to the gamecache package.
var (
	// ErrRegionNotFound is returned for map regions missing from the map
	// index.
	ErrRegionNotFound = errors.New("gamecache: region not registered")

	// ErrNotReady is returned by Loader.Err while bootstrap is running.
	ErrNotReady = errors.New("gamecache: cache is still loading")
)

// IsNotFound reports whether err means the requested file, archive entry,
// record or region does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrRegionNotFound)
}
