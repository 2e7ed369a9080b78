package versionlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache/archive"
)

func buildTables(t *testing.T, b *Builder) *Tables {
	t.Helper()
	ab := archive.NewBuilder()
	b.WriteTo(ab)
	data, err := ab.Build()
	require.NoError(t, err)
	a, err := archive.Parse(data)
	require.NoError(t, err)
	tables, err := Parse(a)
	require.NoError(t, err)
	return tables
}

func TestMapID(t *testing.T) {
	t.Parallel()

	tables := buildTables(t, NewBuilder().
		AddRegion(Region{X: 50, Y: 50, ObjectFile: 1234, LandscapeFile: 5678}).
		AddRegion(Region{X: 48, Y: 148, ObjectFile: 10, LandscapeFile: 11, Members: true}))

	assert.Equal(t, 1234, tables.MapID(50, 50, 0))
	assert.Equal(t, 5678, tables.MapID(50, 50, 1))
	assert.Equal(t, -1, tables.MapID(50, 50, 2))
	assert.Equal(t, -1, tables.MapID(0, 0, 0))
	assert.Equal(t, -1, tables.MapID(0, 0, 1))
	assert.Equal(t, -1, tables.MapID(50, 51, 0))

	assert.True(t, tables.IsMembersRegion(48, 148))
	assert.False(t, tables.IsMembersRegion(50, 50))
	assert.False(t, tables.IsMembersRegion(1, 1))

	assert.Equal(t, 2, tables.RegionCount())
	var ids []int
	for r := range tables.Regions() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []int{50<<8 | 50, 48<<8 | 148}, ids)
}

func TestMapIDFirstRegionWins(t *testing.T) {
	t.Parallel()

	tables := buildTables(t, NewBuilder().
		AddRegion(Region{X: 1, Y: 2, ObjectFile: 3, LandscapeFile: 4}).
		AddRegion(Region{X: 1, Y: 2, ObjectFile: 30, LandscapeFile: 40}))
	assert.Equal(t, 3, tables.MapID(1, 2, 0))
}

func TestFlatTables(t *testing.T) {
	t.Parallel()

	tables := buildTables(t, NewBuilder().
		SetVersion(Model, 3, 7).
		SetCRC(Anim, 1, 0xdeadbeef).
		SetModelFlags(2, 0x81).
		SetFrameLength(4, 6).
		SetMidiFlags(0, 1))

	v, ok := tables.Version(Model, 3)
	require.True(t, ok)
	assert.Equal(t, 7, v)
	v, ok = tables.Version(Model, 0)
	require.True(t, ok)
	assert.Equal(t, 0, v)
	_, ok = tables.Version(Model, 4)
	assert.False(t, ok)
	_, ok = tables.Version(Kind(9), 0)
	assert.False(t, ok)
	assert.Equal(t, 4, tables.Count(Model))
	assert.Equal(t, 0, tables.Count(Midi))

	crc, ok := tables.CRC(Anim, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(0xdeadbeef), crc)

	assert.Equal(t, 0x81, tables.ModelFlags(2))
	assert.Equal(t, 0, tables.ModelFlags(99))
	assert.Equal(t, 6, tables.FrameLength(4))
	assert.Equal(t, 0, tables.FrameLength(-1))
	assert.Equal(t, 1, tables.MidiFlags(0))
}

func TestParseMissingFilesYieldEmptyTables(t *testing.T) {
	t.Parallel()

	data, err := archive.NewBuilder().Add("unrelated", []byte{1}).Build()
	require.NoError(t, err)
	a, err := archive.Parse(data)
	require.NoError(t, err)

	tables, err := Parse(a)
	require.NoError(t, err)
	for _, k := range Kinds {
		assert.Zero(t, tables.Count(k), k.String())
	}
	assert.Zero(t, tables.RegionCount())
	assert.Equal(t, -1, tables.MapID(50, 50, 0))
}

func TestParseCorruptLength(t *testing.T) {
	t.Parallel()

	data, err := archive.NewBuilder().Add("map_index", make([]byte, 8)).Build()
	require.NoError(t, err)
	a, err := archive.Parse(data)
	require.NoError(t, err)

	_, err = Parse(a)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	stored := AppendTrailer([]byte("model bytes"), 3)
	tables := buildTables(t, NewBuilder().AddFile(Model, 0, stored))

	require.NoError(t, tables.Verify(Model, 0, stored))

	tampered := append([]byte(nil), stored...)
	tampered[0] ^= 0xff
	err := tables.Verify(Model, 0, tampered)
	require.ErrorIs(t, err, ErrChecksum)
	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.WantVersion)

	err = tables.Verify(Model, 0, AppendTrailer([]byte("model bytes"), 4))
	require.ErrorIs(t, err, ErrChecksum)

	require.ErrorIs(t, tables.Verify(Model, 1, stored), ErrNoEntry)
}

func TestSplitTrailer(t *testing.T) {
	t.Parallel()

	body, version := SplitTrailer([]byte{1, 2, 3, 0x01, 0x02})
	assert.Equal(t, []byte{1, 2, 3}, body)
	assert.Equal(t, 0x0102, version)

	body, version = SplitTrailer([]byte{9})
	assert.Equal(t, []byte{9}, body)
	assert.Zero(t, version)

	assert.Equal(t, 4, Map.Index())
	assert.Equal(t, "midi", Midi.String())
}
