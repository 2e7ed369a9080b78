package testutil

import (
	"io"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
)

// MockByteSource implements an in-memory store.ByteSource that counts reads.
type MockByteSource struct {
	data  []byte
	reads atomic.Int64
	fail  atomic.Bool
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	m.reads.Add(1)
	if m.fail.Load() {
		return 0, io.ErrUnexpectedEOF
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns the digest of the backing data.
func (m *MockByteSource) SourceID() string {
	return digest.FromBytes(m.data).String()
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// Reads returns the number of ReadAt calls so far.
func (m *MockByteSource) Reads() int64 {
	return m.reads.Load()
}

// FailReads makes every subsequent ReadAt fail.
func (m *MockByteSource) FailReads(fail bool) {
	m.fail.Store(fail)
}
