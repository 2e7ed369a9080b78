package gamecache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache"
	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/internal/buffer"
	"github.com/meigma/gamecache/internal/testutil"
	"github.com/meigma/gamecache/store"
	"github.com/meigma/gamecache/versionlist"
)

func looseFixture() *testutil.Fixture {
	return &testutil.Fixture{
		Models: map[int][]byte{42: []byte("model bytes")},
		Midis:  map[int][]byte{0: []byte("MThd")},
		Frames: map[int][]byte{
			3: testutil.Record(func(w *buffer.Writer) {
				w.PutU8(1).PutU16(12)
				w.PutU8(2).PutU16(4)
				w.PutU8(3).PutU8(1).PutU16(2).PutU16(1).PutU16(65535).PutU16(0)
			}),
		},
		Maps: map[int][]byte{
			1234: []byte("objects"),
			5678: []byte("landscape"),
		},
		Regions: []versionlist.Region{
			{X: 50, Y: 50, ObjectFile: 1234, LandscapeFile: 5678},
		},
		Version: 7,
	}
}

func TestLooseFiles(t *testing.T) {
	t.Parallel()

	m := newManager(t, looseFixture())

	model, err := m.Model(42)
	require.NoError(t, err)
	assert.Equal(t, []byte("model bytes"), model)

	midi, err := m.Midi(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("MThd"), midi)

	_, err = m.Model(41)
	require.ErrorIs(t, err, gamecache.ErrNotFound)
	assert.True(t, gamecache.IsNotFound(err))

	raw, err := m.RawFile(versionlist.Model, 42)
	require.NoError(t, err)
	_, version := versionlist.SplitTrailer(raw)
	assert.Equal(t, 7, version)
}

func TestLooseFileSizeLimit(t *testing.T) {
	t.Parallel()

	m := newManager(t, looseFixture(), gamecache.WithMaxFileSize(4))

	_, err := m.Model(42)
	require.ErrorIs(t, err, codec.ErrSizeMismatch)

	midi, err := m.Midi(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("MThd"), midi)
}

func TestSequenceFrame(t *testing.T) {
	t.Parallel()

	m := newManager(t, looseFixture())

	frame, err := m.SequenceFrame(3)
	require.NoError(t, err)
	assert.Equal(t, 3, frame.ID)
	assert.Equal(t, 12, frame.Skeleton)
	assert.Equal(t, 4, frame.Duration)
	require.Len(t, frame.Transforms, 1)
	assert.Equal(t, -1, frame.Transforms[0].DY)
}

func TestMapFile(t *testing.T) {
	t.Parallel()

	m := newManager(t, looseFixture())

	assert.Equal(t, 1234, m.MapID(50, 50, gamecache.MapObjects))
	assert.Equal(t, 5678, m.MapID(50, 50, gamecache.MapLandscape))
	assert.Equal(t, -1, m.MapID(50, 50, 2))

	objects, err := m.MapFile(50, 50, gamecache.MapObjects)
	require.NoError(t, err)
	assert.Equal(t, []byte("objects"), objects)

	landscape, err := m.MapFile(50, 50, gamecache.MapLandscape)
	require.NoError(t, err)
	assert.Equal(t, []byte("landscape"), landscape)

	_, err = m.MapFile(0, 0, gamecache.MapObjects)
	require.ErrorIs(t, err, gamecache.ErrRegionNotFound)
	assert.True(t, gamecache.IsNotFound(err))
}

func TestVerifyFile(t *testing.T) {
	t.Parallel()

	w := looseFixture().Writer(t)
	st, err := w.Store()
	require.NoError(t, err)
	m, err := gamecache.New(st)
	require.NoError(t, err)
	require.NoError(t, m.VerifyFile(versionlist.Model, 42))
	require.NoError(t, m.VerifyFile(versionlist.Map, 5678))

	// Replace the model after the tables were written.
	packed, err := codec.Gzip([]byte("tampered"))
	require.NoError(t, err)
	require.NoError(t, w.Put(versionlist.Model.Index(), 42, versionlist.AppendTrailer(packed, 7)))
	st, err = w.Store()
	require.NoError(t, err)
	m, err = gamecache.New(st)
	require.NoError(t, err)

	err = m.VerifyFile(versionlist.Model, 42)
	require.ErrorIs(t, err, gamecache.ErrChecksum)
	var ce *versionlist.ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 42, ce.ID)

	err = m.VerifyFile(versionlist.Midi, 9)
	require.Error(t, err)
}

func TestOpenAndClose(t *testing.T) {
	t.Parallel()

	dir := itemFixture().Save(t, t.TempDir())

	m, err := gamecache.Open(dir)
	require.NoError(t, err)
	it, err := m.ItemConfig(3)
	require.NoError(t, err)
	assert.Equal(t, "Bronze sword", it.Name)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = gamecache.Open(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := itemFixture().Save(t, t.TempDir())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	l := gamecache.Load(ctx, dir)
	<-l.Ready()
	require.NoError(t, l.Err())

	m, err := l.Wait(ctx)
	require.NoError(t, err)
	defer m.Close()

	o, err := m.ObjectConfig(0)
	require.NoError(t, err)
	assert.Equal(t, "Tree", o.Name)
}

func TestLoadFailure(t *testing.T) {
	t.Parallel()

	dir := (&testutil.Fixture{OmitSetup: true}).Save(t, t.TempDir())

	m, err := gamecache.Load(context.Background(), dir).Wait(context.Background())
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, gamecache.IsNotFound(err))
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	dir := itemFixture().Save(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gamecache.Load(ctx, dir).Wait(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewFromStore(t *testing.T) {
	t.Parallel()

	st, err := looseFixture().Writer(t).Store(store.WithMaxFileSize(0))
	require.NoError(t, err)

	m, err := gamecache.New(st)
	require.NoError(t, err)
	assert.Same(t, st, m.Store())
	require.NoError(t, m.Close())
}

func TestOpenURL(t *testing.T) {
	t.Parallel()

	dir := looseFixture().Save(t, t.TempDir())
	server := httptest.NewServer(http.FileServer(http.Dir(dir)))
	t.Cleanup(server.Close)

	m, err := gamecache.OpenURL(server.URL, gamecache.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer m.Close()

	model, err := m.Model(42)
	require.NoError(t, err)
	assert.Equal(t, []byte("model bytes"), model)
	require.NoError(t, m.VerifyFile(versionlist.Model, 42))

	landscape, err := m.MapFile(50, 50, gamecache.MapLandscape)
	require.NoError(t, err)
	assert.Equal(t, []byte("landscape"), landscape)

	_, err = gamecache.OpenURL(server.URL + "/missing")
	require.Error(t, err)
}
