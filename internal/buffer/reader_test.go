package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderValues(t *testing.T) {
	t.Parallel()

	w := NewWriter(32)
	w.PutU8(0xff).PutU16(0xfffe).PutU24(0x123456).PutI32(-2).PutString("Bronze sword")
	w.PutU8(0x80)

	r := NewReader(w.Bytes())
	assert.Equal(t, 255, r.U8())
	assert.Equal(t, -2, NewReader([]byte{0xff, 0xfe}).I16())
	assert.Equal(t, 0xfffe, r.U16())
	assert.Equal(t, 0x123456, r.U24())
	assert.Equal(t, int32(-2), r.I32())
	assert.Equal(t, "Bronze sword", r.String())
	assert.Equal(t, -128, r.I8())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderTruncationIsSticky(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, 0x0102, r.U16())
	assert.Equal(t, 0, r.U16())
	require.ErrorIs(t, r.Err(), ErrTruncated)

	// Bytes still available are not returned once the reader has failed.
	assert.Equal(t, 0, r.U8())
	assert.Equal(t, 2, r.Pos())
}

func TestReaderStringWithoutTerminator(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte("no newline"))
	assert.Empty(t, r.String())
	require.ErrorIs(t, r.Err(), ErrTruncated)
}

func TestReaderSeek(t *testing.T) {
	t.Parallel()

	r := NewReaderAt([]byte{0, 0, 7}, 2)
	assert.Equal(t, 7, r.U8())
	require.NoError(t, r.Err())

	r.Seek(4)
	require.ErrorIs(t, r.Err(), ErrTruncated)
}
