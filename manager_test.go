package gamecache_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache"
	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/config"
	"github.com/meigma/gamecache/internal/buffer"
	"github.com/meigma/gamecache/internal/testutil"
	"github.com/meigma/gamecache/versionlist"
)

func named(name string) []byte {
	return testutil.Record(func(w *buffer.Writer) { w.PutU8(2).PutString(name) })
}

func itemFixture() *testutil.Fixture {
	return &testutil.Fixture{
		Items: [][]byte{
			testutil.Record(func(w *buffer.Writer) {
				w.PutU8(2).PutString("Iron arrow")
				w.PutU8(12).PutI32(5)
			}),
			testutil.Record(func(w *buffer.Writer) {
				w.PutU8(1).PutU16(2429)
				w.PutU8(4).PutU16(760)
				w.PutU8(2).PutString("null")
			}),
			testutil.Record(func(w *buffer.Writer) {
				w.PutU8(97).PutU16(0)
				w.PutU8(98).PutU16(1)
			}),
			named("Bronze sword"),
		},
		Objects: [][]byte{named("Tree"), named("Door"), named("Bank booth")},
	}
}

func newManager(t *testing.T, f *testutil.Fixture, opts ...gamecache.Option) *gamecache.Manager {
	t.Helper()
	m, err := gamecache.New(f.Store(t), opts...)
	require.NoError(t, err)
	return m
}

func TestItemConfig(t *testing.T) {
	t.Parallel()

	m := newManager(t, itemFixture())

	it, err := m.ItemConfig(3)
	require.NoError(t, err)
	assert.Equal(t, "Bronze sword", it.Name)
	assert.False(t, it.IsNote())

	count, err := m.ItemCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestItemConfigResolvesNotes(t *testing.T) {
	t.Parallel()

	m := newManager(t, itemFixture())

	note, err := m.ItemConfig(2)
	require.NoError(t, err)
	assert.Equal(t, "Iron arrow", note.Name)
	assert.Equal(t, 5, note.Value)
	assert.Equal(t, 2429, note.Model)
	assert.Equal(t, 760, note.Zoom)
	assert.True(t, note.Stackable)
	assert.Equal(t, "Swap this note at any bank for an Iron arrow.", note.Description)
}

func TestItemConfigNotFound(t *testing.T) {
	t.Parallel()

	m := newManager(t, itemFixture())

	_, err := m.ItemConfig(4)
	require.ErrorIs(t, err, gamecache.ErrRecordNotFound)
	assert.True(t, gamecache.IsNotFound(err))

	_, err = m.ItemConfig(-1)
	assert.True(t, gamecache.IsNotFound(err))
}

func TestItemCacheEviction(t *testing.T) {
	t.Parallel()

	m := newManager(t, itemFixture(), gamecache.WithItemCacheCapacity(2))

	for _, id := range []int{0, 1, 0, 3, 0} {
		_, err := m.ItemConfig(id)
		require.NoError(t, err)
	}

	// 0 hits once, then 3 evicts it.
	items, _ := m.CacheStats()
	assert.Equal(t, int64(1), items.Hits)
	assert.Equal(t, int64(4), items.Misses)
	assert.Equal(t, int64(2), items.Evictions)

	m.ClearTempCaches()
	_, err := m.ItemConfig(3)
	require.NoError(t, err)
	items, _ = m.CacheStats()
	assert.Equal(t, int64(5), items.Misses)
}

func TestObjectConfig(t *testing.T) {
	t.Parallel()

	m := newManager(t, itemFixture(), gamecache.WithSynchronizedCaches(true))

	var wg sync.WaitGroup
	for i := range 12 {
		wg.Go(func() {
			o, err := m.ObjectConfig(i % 3)
			assert.NoError(t, err)
			assert.NotEmpty(t, o.Name)
		})
	}
	wg.Wait()

	o, err := m.ObjectConfig(2)
	require.NoError(t, err)
	assert.Equal(t, "Bank booth", o.Name)

	_, objects := m.CacheStats()
	assert.Equal(t, int64(3), objects.Misses)

	count, err := m.ObjectCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOpcodePolicy(t *testing.T) {
	t.Parallel()

	f := &testutil.Fixture{
		Items: [][]byte{testutil.Record(func(w *buffer.Writer) {
			w.PutU8(200)
			w.PutU8(2).PutString("Mystery box")
		})},
	}

	m := newManager(t, f)
	_, err := m.ItemConfig(0)
	require.ErrorIs(t, err, gamecache.ErrUnknownOpcode)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m = newManager(t, f, gamecache.WithOpcodePolicy(config.PolicySkip), gamecache.WithLogger(logger))
	it, err := m.ItemConfig(0)
	require.NoError(t, err)
	assert.Equal(t, "Mystery box", it.Name)
	assert.Contains(t, logs.String(), "opcode=200")
	assert.Contains(t, logs.String(), "cache ready")
}

func TestSequentialRecords(t *testing.T) {
	t.Parallel()

	f := &testutil.Fixture{
		Sequences: [][]byte{
			testutil.Record(func(w *buffer.Writer) {
				w.PutU8(1).PutU8(2).
					PutU16(5).PutU16(65535).PutU16(0).
					PutU16(6).PutU16(65535).PutU16(3)
			}),
		},
		FrameLengths: map[int]int{5: 7},
		Floors:       [][]byte{testutil.Record(func(w *buffer.Writer) { w.PutU8(6).PutString("grass") })},
		IdentityKits: [][]byte{testutil.Record(func(w *buffer.Writer) { w.PutU8(1).PutU8(4) })},
		Graphics:     [][]byte{testutil.Record(func(w *buffer.Writer) { w.PutU8(1).PutU16(300) })},
		Widgets:      [][]byte{testutil.Record(func(w *buffer.Writer) { w.PutU8(1).PutU16(0) })},
	}
	m := newManager(t, f)

	seq, err := m.Sequence(0)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, seq.Frames)
	assert.Equal(t, []int{7, 3}, seq.Delays)

	floor, err := m.FloorConfig(0)
	require.NoError(t, err)
	assert.Equal(t, "grass", floor.Name)

	kit, err := m.IdentityKitConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 4, kit.BodyPart)

	gfx, err := m.GraphicConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 300, gfx.Model)

	widget, err := m.WidgetConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 0, widget.Parent)

	_, err = m.GraphicConfig(1)
	assert.True(t, gamecache.IsNotFound(err))
}

func TestMissingTable(t *testing.T) {
	t.Parallel()

	m := newManager(t, &testutil.Fixture{})

	_, err := m.ItemConfig(0)
	require.ErrorIs(t, err, gamecache.ErrFileNotFound)
	_, err = m.Sequence(0)
	require.ErrorIs(t, err, gamecache.ErrFileNotFound)
	_, err = m.WidgetConfig(0)
	require.ErrorIs(t, err, gamecache.ErrFileNotFound)
}

func TestArchiveMemoized(t *testing.T) {
	t.Parallel()

	st, src := itemFixture().MockStore(t)
	m, err := gamecache.New(st)
	require.NoError(t, err)

	before := src.Reads()
	first, err := m.Archive(archive.Config)
	require.NoError(t, err)
	afterFirst := src.Reads()
	assert.Greater(t, afterFirst, before)

	second, err := m.Archive(archive.Config)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, afterFirst, src.Reads())
}

func TestArchiveConcurrentOpen(t *testing.T) {
	t.Parallel()

	st, _ := itemFixture().MockStore(t)
	m, err := gamecache.New(st)
	require.NoError(t, err)

	results := make([]*archive.Archive, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Go(func() {
			a, err := m.Archive(archive.Config)
			assert.NoError(t, err)
			results[i] = a
		})
	}
	wg.Wait()

	for _, a := range results {
		assert.Same(t, results[0], a)
	}
}

func TestArchiveReadFailure(t *testing.T) {
	t.Parallel()

	st, src := itemFixture().MockStore(t)
	m, err := gamecache.New(st)
	require.NoError(t, err)

	src.FailReads(true)
	_, err = m.Archive(archive.Interface)
	require.Error(t, err)

	src.FailReads(false)
	a, err := m.Archive(archive.Interface)
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestPreload(t *testing.T) {
	t.Parallel()

	st, src := itemFixture().MockStore(t)
	m, err := gamecache.New(st, gamecache.WithPreload(archive.Config, archive.Interface))
	require.NoError(t, err)

	reads := src.Reads()
	_, err = m.Archive(archive.Interface)
	require.NoError(t, err)
	assert.Equal(t, reads, src.Reads())

	_, err = gamecache.New(itemFixture().Store(t), gamecache.WithPreload(archive.Media))
	require.ErrorIs(t, err, gamecache.ErrNotFound)
}

func TestMissingSetupArchive(t *testing.T) {
	t.Parallel()

	_, err := gamecache.New((&testutil.Fixture{OmitSetup: true}).Store(t))
	require.Error(t, err)
	assert.True(t, gamecache.IsNotFound(err))
}

func TestCodecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		codec codec.Codec
		whole bool
	}{
		{"bzip2", codec.Bzip2(), false},
		{"zstd", codec.NewZstd(), true},
		{"lz4", codec.LZ4(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := itemFixture()
			f.Codec = tt.codec
			f.Whole = tt.whole

			m := newManager(t, f, gamecache.WithCodec(tt.name))
			assert.Equal(t, tt.name, m.Codec().Name())

			it, err := m.ItemConfig(3)
			require.NoError(t, err)
			assert.Equal(t, "Bronze sword", it.Name)
		})
	}

	_, err := gamecache.New(itemFixture().Store(t), gamecache.WithCodec("brotli"))
	require.Error(t, err)
}

func TestSetupTables(t *testing.T) {
	t.Parallel()

	f := &testutil.Fixture{
		Models:  map[int][]byte{0: []byte("model zero"), 9: []byte("model nine")},
		Version: 3,
	}
	m := newManager(t, f)

	assert.Equal(t, 10, m.Tables().Count(versionlist.Model))
	v, ok := m.Tables().Version(versionlist.Model, 9)
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.NotNil(t, m.Store())
}
