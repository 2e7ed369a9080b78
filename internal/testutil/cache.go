// Package testutil builds synthetic caches for tests.
package testutil

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/internal/buffer"
	"github.com/meigma/gamecache/store"
	"github.com/meigma/gamecache/versionlist"
)

// Fixture describes the contents of a synthetic cache. Record slices hold
// encoded opcode streams, one per id.
type Fixture struct {
	// Codec compresses archives; nil uses bzip2.
	Codec codec.Codec

	// Whole compresses each archive as a single stream.
	Whole bool

	Items        [][]byte
	Objects      [][]byte
	Sequences    [][]byte
	Floors       [][]byte
	IdentityKits [][]byte
	Graphics     [][]byte
	Widgets      [][]byte

	// Loose files by id, stored gzip-compressed with a version trailer.
	Models map[int][]byte
	Frames map[int][]byte
	Midis  map[int][]byte
	Maps   map[int][]byte

	Regions      []versionlist.Region
	FrameLengths map[int]int

	// Version is written into every loose file trailer.
	Version int

	// OmitSetup leaves the setup archive out of the cache.
	OmitSetup bool
}

// Writer encodes the fixture into a store writer.
func (f *Fixture) Writer(tb testing.TB) *store.Writer {
	tb.Helper()

	w := store.NewWriter(store.DefaultIndexCount)
	setup := versionlist.NewBuilder()

	loose := []struct {
		kind  versionlist.Kind
		files map[int][]byte
	}{
		{versionlist.Model, f.Models},
		{versionlist.Anim, f.Frames},
		{versionlist.Midi, f.Midis},
		{versionlist.Map, f.Maps},
	}
	for _, l := range loose {
		for _, id := range slices.Sorted(maps.Keys(l.files)) {
			packed, err := codec.Gzip(l.files[id])
			require.NoError(tb, err)
			stored := versionlist.AppendTrailer(packed, f.Version)
			require.NoError(tb, w.Put(l.kind.Index(), id, stored))
			setup.AddFile(l.kind, id, stored)
		}
	}
	for _, r := range f.Regions {
		setup.AddRegion(r)
	}
	for id, length := range f.FrameLengths {
		setup.SetFrameLength(id, length)
	}

	config := f.archiveBuilder()
	if f.Items != nil {
		dat, idx := IndexedFiles(f.Items...)
		config.Add("obj.dat", dat).Add("obj.idx", idx)
	}
	if f.Objects != nil {
		dat, idx := IndexedFiles(f.Objects...)
		config.Add("loc.dat", dat).Add("loc.idx", idx)
	}
	for name, records := range map[string][][]byte{
		"seq.dat":      f.Sequences,
		"flo.dat":      f.Floors,
		"idk.dat":      f.IdentityKits,
		"spotanim.dat": f.Graphics,
	} {
		if records != nil {
			config.Add(name, SequentialFile(records...))
		}
	}
	f.putArchive(tb, w, archive.Config, config)

	iface := f.archiveBuilder()
	if f.Widgets != nil {
		iface.Add("data", SequentialFile(f.Widgets...))
	}
	f.putArchive(tb, w, archive.Interface, iface)

	if !f.OmitSetup {
		ab := f.archiveBuilder()
		setup.WriteTo(ab)
		f.putArchive(tb, w, archive.VersionList, ab)
	}
	return w
}

func (f *Fixture) archiveBuilder() *archive.Builder {
	c := f.Codec
	if c == nil {
		c = codec.Bzip2()
	}
	return archive.NewBuilder(archive.WithCodec(c), archive.WithWholeCompression(f.Whole))
}

func (f *Fixture) putArchive(tb testing.TB, w *store.Writer, id int, b *archive.Builder) {
	tb.Helper()
	data, err := b.Build()
	require.NoError(tb, err)
	require.NoError(tb, w.Put(0, id, data))
}

// Store returns an in-memory store holding the fixture.
func (f *Fixture) Store(tb testing.TB, opts ...store.Option) *store.Store {
	tb.Helper()
	st, err := f.Writer(tb).Store(opts...)
	require.NoError(tb, err)
	return st
}

// MockStore returns a store holding the fixture whose data stream is a
// MockByteSource, so tests can count and fail block reads.
func (f *Fixture) MockStore(tb testing.TB, opts ...store.Option) (*store.Store, *MockByteSource) {
	tb.Helper()
	w := f.Writer(tb)
	data := NewMockByteSource(w.Data())
	indices := make([]store.ByteSource, store.DefaultIndexCount)
	for i := range indices {
		indices[i] = store.NewBytesSource(w.Index(i))
	}
	st, err := store.New(data, indices, opts...)
	require.NoError(tb, err)
	return st, data
}

// Save writes the fixture into dir as cache files and returns dir.
func (f *Fixture) Save(tb testing.TB, dir string) string {
	tb.Helper()
	require.NoError(tb, f.Writer(tb).Save(dir))
	return dir
}

// IndexedFiles encodes records as a dat/idx pair.
func IndexedFiles(records ...[]byte) (data, index []byte) {
	dw := buffer.NewWriter(64).PutU16(len(records))
	iw := buffer.NewWriter(2 + 2*len(records)).PutU16(len(records))
	for _, rec := range records {
		dw.PutBytes(rec)
		iw.PutU16(len(rec))
	}
	return dw.Bytes(), iw.Bytes()
}

// SequentialFile encodes records back to back after a count.
func SequentialFile(records ...[]byte) []byte {
	w := buffer.NewWriter(64).PutU16(len(records))
	for _, rec := range records {
		w.PutBytes(rec)
	}
	return w.Bytes()
}

// Record returns an opcode stream built by fn and terminated with opcode 0.
func Record(fn func(w *buffer.Writer)) []byte {
	w := buffer.NewWriter(32)
	if fn != nil {
		fn(w)
	}
	return w.PutU8(0).Bytes()
}
