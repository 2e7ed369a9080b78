package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// DataFileName is the name of the data stream inside a cache directory.
const DataFileName = "main_file_cache.dat"

// IndexFileName returns the name of index stream i inside a cache directory.
func IndexFileName(i int) string {
	return fmt.Sprintf("main_file_cache.idx%d", i)
}

// fileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so we cache the size at construction.
type fileSource struct {
	file     *os.File
	size     int64
	sourceID string
}

// newFileSource creates a fileSource from an open file.
func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", f.Name(), err)
	}
	absPath, err := filepath.Abs(f.Name())
	if err != nil {
		absPath = f.Name()
	}
	return &fileSource{
		file:     f,
		size:     info.Size(),
		sourceID: fmt.Sprintf("file:%s:%d:%d", absPath, info.Size(), info.ModTime().UnixNano()),
	}, nil
}

// ReadAt implements io.ReaderAt.
func (fs *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

// Size returns the total size of the file.
func (fs *fileSource) Size() int64 {
	return fs.size
}

// SourceID returns a stable identifier for the file content.
func (fs *fileSource) SourceID() string {
	return fs.sourceID
}

// BytesSource is an in-memory ByteSource.
type BytesSource struct {
	data     []byte
	sourceID string
}

// NewBytesSource returns a ByteSource backed by data.
// The identifier is the content digest of data.
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{data: data, sourceID: digest.FromBytes(data).String()}
}

// ReadAt implements io.ReaderAt over the backing slice.
func (b *BytesSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the length of the backing data.
func (b *BytesSource) Size() int64 {
	return int64(len(b.data))
}

// SourceID returns the content digest.
func (b *BytesSource) SourceID() string {
	return b.sourceID
}

// File is a Store backed by files in a cache directory.
// Close must be called to release file resources.
type File struct {
	*Store
	files []*os.File
}

// Close closes the underlying data and index files.
func (f *File) Close() error {
	var errs []error
	for _, file := range f.files {
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.files = nil
	return errors.Join(errs...)
}

// Open opens the data stream and the DefaultIndexCount index streams in dir.
//
// Index 0 must exist; any other missing index file is treated as an empty
// index so every lookup in it reports ErrNotFound.
func Open(dir string, opts ...Option) (*File, error) {
	f := &File{}
	openSource := func(name string) (*fileSource, error) {
		file, err := os.Open(filepath.Join(dir, name)) //nolint:gosec // User-provided cache directory is intentional
		if err != nil {
			return nil, err
		}
		f.files = append(f.files, file)
		return newFileSource(file)
	}

	data, err := openSource(DataFileName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open data file: %w", err)
	}

	indices := make([]ByteSource, DefaultIndexCount)
	for i := range indices {
		src, err := openSource(IndexFileName(i))
		if err != nil {
			if i > 0 && errors.Is(err, os.ErrNotExist) {
				continue
			}
			f.Close()
			return nil, fmt.Errorf("open index %d: %w", i, err)
		}
		indices[i] = src
	}

	st, err := New(data, indices, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.Store = st
	return f, nil
}

// Interface compliance.
var (
	_ ByteSource = (*fileSource)(nil)
	_ ByteSource = (*BytesSource)(nil)
)
