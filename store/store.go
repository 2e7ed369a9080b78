// Package store reads logical files from a block-chained cache.
//
// A cache consists of one data stream split into fixed 520-byte blocks and
// several index streams. An index stream maps a file id to the file's size
// and first block; the remaining blocks are found by following the next-block
// pointer stored in each block header. Every header repeats the owning file
// id, the part number and the owning index, so cross-linked or truncated
// chains are detected while reading.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// On-disk layout constants.
const (
	// IndexEntrySize is the size of one index record (size:u24, first_block:u24).
	IndexEntrySize = 6

	// BlockSize is the size of one data block including its header.
	BlockSize = 520

	// BlockHeaderSize is the size of the block header.
	BlockHeaderSize = 8

	// BlockPayloadSize is the number of file bytes carried by one block.
	BlockPayloadSize = BlockSize - BlockHeaderSize

	// DefaultIndexCount is the number of index streams in a standard cache:
	// config archives, models, animations, midis and maps.
	DefaultIndexCount = 5
)

// ByteSource provides random access to an index or data stream.
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// Entry is a decoded index record.
type Entry struct {
	Size       int
	FirstBlock int
}

// BlockHeader is the 8-byte prefix of every data block.
type BlockHeader struct {
	File  int
	Part  int
	Next  int
	Index int
}

func parseEntry(b []byte) Entry {
	return Entry{
		Size:       int(b[0])<<16 | int(b[1])<<8 | int(b[2]),
		FirstBlock: int(b[3])<<16 | int(b[4])<<8 | int(b[5]),
	}
}

func parseHeader(b []byte) BlockHeader {
	return BlockHeader{
		File:  int(b[0])<<8 | int(b[1]),
		Part:  int(b[2])<<8 | int(b[3]),
		Next:  int(b[4])<<16 | int(b[5])<<8 | int(b[6]),
		Index: int(b[7]),
	}
}

// Store reads logical files from a data stream and its index streams.
//
// Read is safe for concurrent use: the whole lookup and chain walk runs under
// one mutex so callers never interleave accesses to the shared streams.
type Store struct {
	mu          sync.Mutex
	data        ByteSource
	indices     []ByteSource // nil entries are absent index streams
	maxFileSize int
	logger      *slog.Logger
	block       [BlockSize]byte // scratch buffer, guarded by mu
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// New creates a Store over a data stream and its index streams.
// indices[i] serves index id i; a nil source marks an absent index.
func New(data ByteSource, indices []ByteSource, opts ...Option) (*Store, error) {
	if data == nil {
		return nil, errors.New("store: data source is nil")
	}
	if len(indices) == 0 || len(indices) > 255 {
		return nil, fmt.Errorf("store: invalid index count %d", len(indices))
	}
	s := &Store{
		data:        data,
		indices:     indices,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IndexCount returns the number of index streams, including absent ones.
func (s *Store) IndexCount() int {
	return len(s.indices)
}

// BlockCount returns the number of whole blocks in the data stream.
func (s *Store) BlockCount() int {
	return int(s.data.Size() / BlockSize)
}

// FileCount returns the number of entries in an index stream.
// Entries with size zero are counted; they denote deleted or unused ids.
func (s *Store) FileCount(index int) int {
	if index < 0 || index >= len(s.indices) || s.indices[index] == nil {
		return 0
	}
	return int(s.indices[index].Size() / IndexEntrySize)
}

// Entry returns the index record for a file.
func (s *Store) Entry(index, file int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry(index, file)
}

func (s *Store) entry(index, file int) (Entry, error) {
	if file < 0 || file >= s.FileCount(index) {
		return Entry{}, &NotFoundError{Index: index, File: file}
	}
	var raw [IndexEntrySize]byte
	n, err := s.indices[index].ReadAt(raw[:], int64(file)*IndexEntrySize)
	if n < IndexEntrySize {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return Entry{}, fmt.Errorf("store: read index %d entry %d: %w", index, file, err)
	}
	return parseEntry(raw[:]), nil
}

// Read reconstructs a logical file by walking its block chain.
//
// It returns an error wrapping ErrNotFound when the entry is absent or empty,
// and a *CorruptError wrapping ErrCorrupt when any block header disagrees with
// the chain being walked.
func (s *Store) Read(index, file int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.entry(index, file)
	if err != nil {
		return nil, err
	}
	if entry.Size <= 0 {
		return nil, &NotFoundError{Index: index, File: file}
	}
	if s.maxFileSize > 0 && entry.Size > s.maxFileSize {
		return nil, s.corrupt(index, file, entry.FirstBlock, 0,
			fmt.Sprintf("size %d exceeds limit %d", entry.Size, s.maxFileSize))
	}

	blockCount := s.BlockCount()
	out := make([]byte, entry.Size)
	block := entry.FirstBlock
	read := 0
	for part := 0; read < entry.Size; part++ {
		if block <= 0 || block > blockCount {
			return nil, s.corrupt(index, file, block, part,
				fmt.Sprintf("block pointer outside 1..%d", blockCount))
		}

		n := min(BlockPayloadSize, entry.Size-read)
		chunk := s.block[:BlockHeaderSize+n]
		got, err := s.data.ReadAt(chunk, int64(block)*BlockSize)
		if got < len(chunk) {
			reason := fmt.Sprintf("short block read (%d of %d bytes)", got, len(chunk))
			if err != nil && !errors.Is(err, io.EOF) {
				reason = fmt.Sprintf("%s: %v", reason, err)
			}
			return nil, s.corrupt(index, file, block, part, reason)
		}

		hdr := parseHeader(chunk)
		switch {
		case hdr.File != file:
			return nil, s.corrupt(index, file, block, part, fmt.Sprintf("owner file %d", hdr.File))
		case hdr.Part != part&0xffff:
			return nil, s.corrupt(index, file, block, part, fmt.Sprintf("part number %d", hdr.Part))
		case hdr.Index != index+1:
			return nil, s.corrupt(index, file, block, part, fmt.Sprintf("owner index %d", hdr.Index-1))
		}

		copy(out[read:], chunk[BlockHeaderSize:])
		read += n
		block = hdr.Next
	}
	return out, nil
}

func (s *Store) corrupt(index, file, block, part int, reason string) error {
	err := &CorruptError{Index: index, File: file, Block: block, Part: part, Reason: reason}
	s.log().Error("corrupt block chain",
		"index", index, "file", file, "block", block, "part", part, "reason", reason)
	return err
}
