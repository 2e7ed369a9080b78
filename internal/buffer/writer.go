package buffer

// Writer appends big-endian values to a growing byte slice.
// It is the inverse of Reader and is used by builders and test fixtures.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written data. The result aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutU8 appends one byte.
func (w *Writer) PutU8(v int) *Writer {
	w.buf = append(w.buf, byte(v))
	return w
}

// PutU16 appends a 16-bit value.
func (w *Writer) PutU16(v int) *Writer {
	w.buf = append(w.buf, byte(v>>8), byte(v))
	return w
}

// PutU24 appends a 24-bit value.
func (w *Writer) PutU24(v int) *Writer {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
	return w
}

// PutI32 appends a 32-bit value.
func (w *Writer) PutI32(v int32) *Writer {
	u := uint32(v)
	w.buf = append(w.buf, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
	return w
}

// PutString appends s followed by StringTerminator.
func (w *Writer) PutString(s string) *Writer {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, StringTerminator)
	return w
}

// PutBytes appends raw bytes.
func (w *Writer) PutBytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}
