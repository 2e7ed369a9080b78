package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// maxEntryValue is the largest value a 24-bit index field can hold.
const maxEntryValue = 1<<24 - 1

// Writer builds a cache in memory.
//
// Each Put appends a fresh block chain to the end of the data stream and
// points the index entry at it; chains from earlier Puts of the same file are
// left unreferenced. Block 0 is reserved because a next-block value of zero
// terminates a chain.
type Writer struct {
	data    []byte
	indices [][]byte
}

// NewWriter returns an empty Writer with indexCount index streams.
func NewWriter(indexCount int) *Writer {
	if indexCount <= 0 {
		indexCount = DefaultIndexCount
	}
	return &Writer{
		data:    make([]byte, BlockSize),
		indices: make([][]byte, indexCount),
	}
}

// Put stores data as file in index.
// An empty data slice writes a zero-size entry, which reads as not found.
func (w *Writer) Put(index, file int, data []byte) error {
	if index < 0 || index >= len(w.indices) {
		return fmt.Errorf("store: index %d out of range", index)
	}
	if file < 0 || file > 0xffff {
		return fmt.Errorf("store: file id %d out of range", file)
	}
	if len(data) > maxEntryValue {
		return fmt.Errorf("store: file size %d exceeds %d", len(data), maxEntryValue)
	}

	first := 0
	if len(data) > 0 {
		first = len(w.data) / BlockSize
		blocks := (len(data) + BlockPayloadSize - 1) / BlockPayloadSize
		if first+blocks > maxEntryValue {
			return fmt.Errorf("store: data stream full at block %d", first)
		}
		for part := range blocks {
			block := first + part
			next := 0
			if part < blocks-1 {
				next = block + 1
			}
			var buf [BlockSize]byte
			buf[0] = byte(file >> 8)
			buf[1] = byte(file)
			buf[2] = byte(part >> 8)
			buf[3] = byte(part)
			buf[4] = byte(next >> 16)
			buf[5] = byte(next >> 8)
			buf[6] = byte(next)
			buf[7] = byte(index + 1)
			copy(buf[BlockHeaderSize:], data[part*BlockPayloadSize:])
			w.data = append(w.data, buf[:]...)
		}
	}

	need := (file + 1) * IndexEntrySize
	if len(w.indices[index]) < need {
		w.indices[index] = append(w.indices[index], make([]byte, need-len(w.indices[index]))...)
	}
	e := w.indices[index][file*IndexEntrySize:]
	e[0] = byte(len(data) >> 16)
	e[1] = byte(len(data) >> 8)
	e[2] = byte(len(data))
	e[3] = byte(first >> 16)
	e[4] = byte(first >> 8)
	e[5] = byte(first)
	return nil
}

// Data returns the data stream. The result aliases the writer's buffer.
func (w *Writer) Data() []byte {
	return w.data
}

// Index returns index stream i. The result aliases the writer's buffer.
func (w *Writer) Index(i int) []byte {
	return w.indices[i]
}

// Store returns an in-memory Store over the current contents.
func (w *Writer) Store(opts ...Option) (*Store, error) {
	indices := make([]ByteSource, len(w.indices))
	for i, idx := range w.indices {
		indices[i] = NewBytesSource(idx)
	}
	return New(NewBytesSource(w.data), indices, opts...)
}

// Save writes the cache files into dir.
//
// Uses atomic writes (temp file + rename) to prevent partial files on failure.
// The directory is created if needed.
func (w *Writer) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, DataFileName), w.data); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	for i, idx := range w.indices {
		if err := writeFileAtomic(filepath.Join(dir, IndexFileName(i)), idx); err != nil {
			return fmt.Errorf("write index %d: %w", i, err)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temp file then renames to target,
// ensuring atomic replacement of the target file.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
