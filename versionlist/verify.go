package versionlist

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// TrailerSize is the length of the version trailer appended to files in the
// category indices.
const TrailerSize = 2

// Verification errors.
var (
	ErrChecksum = errors.New("versionlist: checksum mismatch")
	ErrNoEntry  = errors.New("versionlist: file has no checksum entry")
)

// ChecksumError describes a file whose contents do not match the tables.
type ChecksumError struct {
	Kind        Kind
	ID          int
	WantCRC     uint32
	GotCRC      uint32
	WantVersion int
	GotVersion  int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("versionlist: %s %d: crc %08x (want %08x), version %d (want %d)",
		e.Kind, e.ID, e.GotCRC, e.WantCRC, e.GotVersion, e.WantVersion)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksum
}

// SplitTrailer splits a stored file into its body and trailing version.
// Files shorter than the trailer have no version.
func SplitTrailer(data []byte) ([]byte, int) {
	if len(data) < TrailerSize {
		return data, 0
	}
	n := len(data) - TrailerSize
	return data[:n], int(data[n])<<8 | int(data[n+1])
}

// AppendTrailer returns body followed by a version trailer.
func AppendTrailer(body []byte, version int) []byte {
	out := make([]byte, len(body), len(body)+TrailerSize)
	copy(out, body)
	return append(out, byte(version>>8), byte(version))
}

// Verify checks a stored file against its recorded checksum and version.
func (t *Tables) Verify(k Kind, id int, data []byte) error {
	wantCRC, ok := t.CRC(k, id)
	if !ok {
		return fmt.Errorf("%w: %s %d", ErrNoEntry, k, id)
	}
	wantVersion, _ := t.Version(k, id)

	body, version := SplitTrailer(data)
	got := crc32.ChecksumIEEE(body)
	if got != wantCRC || version != wantVersion {
		return &ChecksumError{
			Kind:        k,
			ID:          id,
			WantCRC:     wantCRC,
			GotCRC:      got,
			WantVersion: wantVersion,
			GotVersion:  version,
		}
	}
	return nil
}
