// Package buffer provides big-endian cursors over in-memory cache data.
//
// Reader uses a sticky error: once a read runs past the end of the buffer,
// every subsequent read returns a zero value and Err reports ErrTruncated.
// Callers check Err at natural boundaries (after an opcode, after a header)
// instead of after every field.
package buffer

import (
	"errors"
	"fmt"
)

// StringTerminator ends every string in the cache formats.
const StringTerminator = '\n'

// ErrTruncated is returned when a read runs past the end of the buffer.
var ErrTruncated = errors.New("buffer: read past end of data")

// Reader reads big-endian values from a byte slice.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader returns a Reader positioned at the start of data.
// The slice is retained; callers must not modify it while reading.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt returns a Reader positioned at off.
func NewReaderAt(data []byte, off int) *Reader {
	r := &Reader{data: data}
	r.Seek(off)
	return r
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total length of the underlying data.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Seek moves the cursor to off. Offsets outside the buffer set ErrTruncated.
func (r *Reader) Seek(off int) {
	if off < 0 || off > len(r.data) {
		r.fail(off, 0)
		return
	}
	r.pos = off
}

// take returns the next n bytes or nil after recording a truncation.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail(r.pos, n)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) fail(off, n int) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncated, n, off, len(r.data))
	}
}

// U8 reads an unsigned byte.
func (r *Reader) U8() int {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return int(b[0])
}

// I8 reads a signed byte.
func (r *Reader) I8() int {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return int(int8(b[0]))
}

// U16 reads an unsigned 16-bit value.
func (r *Reader) U16() int {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int(b[0])<<8 | int(b[1])
}

// I16 reads a signed 16-bit value.
func (r *Reader) I16() int {
	return int(int16(r.U16()))
}

// U24 reads an unsigned 24-bit value.
func (r *Reader) U24() int {
	b := r.take(3)
	if b == nil {
		return 0
	}
	return int(b[0])<<16 | int(b[1])<<8 | int(b[2])
}

// I32 reads a signed 32-bit value.
func (r *Reader) I32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// U32 reads an unsigned 32-bit value.
func (r *Reader) U32() uint32 {
	return uint32(r.I32())
}

// String reads bytes up to StringTerminator and consumes the terminator.
// A missing terminator is a truncation.
func (r *Reader) String() string {
	if r.err != nil {
		return ""
	}
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == StringTerminator {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s
		}
	}
	r.fail(r.pos, len(r.data)-r.pos+1)
	return ""
}

// Bytes returns the next n bytes. The result aliases the buffer.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}
