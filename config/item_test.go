package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache/internal/buffer"
)

func TestItemNameAndStackable(t *testing.T) {
	t.Parallel()

	data := []byte{2}
	data = append(data, "Bronze sword"...)
	data = append(data, 10, 11, 0)

	got, err := NewDecoder().Item(1277, data)
	require.NoError(t, err)

	want := DefaultItem(1277)
	want.Name = "Bronze sword"
	want.Stackable = true
	assert.Equal(t, &want, got)
}

func TestItemOpcodes(t *testing.T) {
	t.Parallel()

	w := buffer.NewWriter(128)
	w.PutU8(1).PutU16(2373)
	w.PutU8(3).PutString("A razor sharp sword.")
	w.PutU8(4).PutU16(1480)
	w.PutU8(7).PutU16(65535 - 3) // -4
	w.PutU8(10).PutU16(1234)
	w.PutU8(12).PutI32(26)
	w.PutU8(16)
	w.PutU8(23).PutU16(490).PutU8(0xfe) // offset -2
	w.PutU8(25).PutU16(491).PutU8(3)
	w.PutU8(30).PutString("Take")
	w.PutU8(31).PutString("hidden")
	w.PutU8(36).PutString("Wield")
	w.PutU8(40).PutU8(2).PutU16(10).PutU16(20).PutU16(30).PutU16(40)
	w.PutU8(78).PutU16(77)
	w.PutU8(92).PutU16(88)
	w.PutU8(101).PutU16(996).PutU16(5)
	w.PutU8(110).PutU16(64)
	w.PutU8(113).PutU8(0xf6) // -10
	w.PutU8(114).PutU8(3)
	w.PutU8(115).PutU8(7)
	w.PutU8(0)

	it, err := NewDecoder().Item(1, w.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 2373, it.Model)
	assert.Equal(t, "A razor sharp sword.", it.Description)
	assert.Equal(t, 1480, it.Zoom)
	assert.Equal(t, -4, it.OffsetX)
	assert.Equal(t, 26, it.Value)
	assert.True(t, it.Members)
	assert.Equal(t, [3]int{490, -1, 77}, it.MaleWield)
	assert.Equal(t, -2, it.MaleWieldOffset)
	assert.Equal(t, [3]int{491, -1, -1}, it.FemaleWield)
	assert.Equal(t, 3, it.FemaleWieldOffset)
	assert.Equal(t, [5]string{"Take", "", "", "", ""}, it.GroundActions)
	assert.Equal(t, "Wield", it.Actions[1])
	assert.Equal(t, []Recolor{{From: 10, To: 20}, {From: 30, To: 40}}, it.Recolors)
	assert.Equal(t, [2]int{88, -1}, it.MaleHead)
	assert.Equal(t, StackVariant{ID: 996, Amount: 5}, it.StackVariants[1])
	assert.Equal(t, 64, it.ScaleX)
	assert.Equal(t, 128, it.ScaleY)
	assert.Equal(t, -10, it.Ambient)
	assert.Equal(t, 15, it.Contrast)
	assert.Equal(t, 7, it.Team)
	assert.False(t, it.IsNote())
}

func TestItemToNote(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	template, err := d.Item(799, []byte{1, 0x09, 0x6f, 4, 0x03, 0x20, 0})
	require.NoError(t, err)

	base := DefaultItem(1511)
	base.Name = "Logs"
	base.Value = 4
	base.Members = true

	noted, err := d.Item(1512, []byte{97, 0x05, 0xe7, 98, 0x03, 0x1f, 0})
	require.NoError(t, err)
	require.True(t, noted.IsNote())

	got := noted.ToNote(template, &base)
	assert.Equal(t, 1512, got.ID)
	assert.Equal(t, template.Model, got.Model)
	assert.Equal(t, 800, got.Zoom)
	assert.Equal(t, "Logs", got.Name)
	assert.Equal(t, 4, got.Value)
	assert.True(t, got.Members)
	assert.True(t, got.Stackable)
	assert.Equal(t, "Swap this note at any bank for a Logs.", got.Description)

	// The stored record is not modified.
	assert.Empty(t, noted.Name)

	base.Name = "Oak logs"
	got = noted.ToNote(template, &base)
	assert.Equal(t, "Swap this note at any bank for an Oak logs.", got.Description)
}

func TestUnknownOpcodePolicy(t *testing.T) {
	t.Parallel()

	data := []byte{2, 'x', 10, 200, 11, 0}

	_, err := NewDecoder().Item(5, data)
	require.ErrorIs(t, err, ErrUnknownOpcode)
	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, KindItem, recErr.Kind)
	assert.Equal(t, 5, recErr.ID)
	assert.Equal(t, 200, recErr.Opcode)
	assert.Equal(t, 3, recErr.Offset)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	it, err := NewDecoder(WithPolicy(PolicySkip), WithLogger(logger)).Item(5, data)
	require.NoError(t, err)
	assert.Equal(t, "x", it.Name)
	assert.True(t, it.Stackable)
	assert.Contains(t, logs.String(), "opcode=200")
}

func TestTruncatedRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		opcode int
	}{
		{"empty", nil, -1},
		{"missing terminator", []byte{11}, -1},
		{"short operand", []byte{1, 0x01}, 1},
		{"unterminated string", []byte{2, 'a', 'b'}, 2},
		{"short recolor list", []byte{40, 2, 0, 1, 0, 2}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDecoder().Item(0, tt.data)
			require.ErrorIs(t, err, ErrTruncatedRecord)
			var recErr *RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.opcode, recErr.Opcode)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Policy{"": PolicyFail, "fail": PolicyFail, "skip": PolicySkip} {
		got, err := ParsePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("ignore")
	require.Error(t, err)
	assert.Equal(t, "skip", PolicySkip.String())
}
