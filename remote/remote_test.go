package remote

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/internal/buffer"
	"github.com/meigma/gamecache/internal/testutil"
	"github.com/meigma/gamecache/store"
)

func TestSourceReadAt(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "data", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)

	src, err := NewSource(server.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), src.Size())
	assert.Contains(t, src.SourceID(), server.URL)

	buf := make([]byte, 5)
	n, err := src.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	edge := make([]byte, 10)
	n, err = src.ReadAt(edge, int64(len(data)-3))
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "rld", string(edge[:n]))

	_, err = src.ReadAt(buf, int64(len(data)))
	require.ErrorIs(t, err, io.EOF)
}

func TestSourceRangeUnsupported(t *testing.T) {
	t.Parallel()

	data := []byte("range unsupported")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	_, err := NewSource(server.URL)
	require.ErrorIs(t, err, ErrRangeUnsupported)
}

func TestSourceHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.ServeContent(w, r, "data", time.Time{}, bytes.NewReader([]byte("secret")))
	}))
	t.Cleanup(server.Close)

	_, err := NewSource(server.URL)
	require.Error(t, err)

	src, err := NewSource(server.URL, WithHeader("Authorization", "Bearer token"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), src.Size())
}

func TestParseContentRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"bytes 0-0/520", 520, false},
		{" bytes 10-19/20 ", 20, false},
		{"bytes */0", 0, false},
		{"bytes 0-0/*", 0, true},
		{"items 0-0/10", 0, true},
		{"bytes 0-0", 0, true},
		{"bytes 0-0/-4", 0, true},
	}
	for _, tt := range tests {
		got, err := parseContentRange(tt.value)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got)
	}
}

func TestPaged(t *testing.T) {
	t.Parallel()

	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	src := testutil.NewMockByteSource(data)
	p := NewPaged(src, 100, 4)

	buf := make([]byte, 150)
	n, err := p.ReadAt(buf, 50)
	require.NoError(t, err)
	assert.Equal(t, 150, n)
	assert.Equal(t, data[50:200], buf)
	assert.Equal(t, int64(2), src.Reads())

	// Same pages again.
	_, err = p.ReadAt(buf[:10], 120)
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.Reads())
	assert.Equal(t, int64(1), p.Stats().Hits)

	tail := make([]byte, 20)
	n, err = p.ReadAt(tail, 990)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 10, n)
	assert.Equal(t, data[990:], tail[:n])

	src.FailReads(true)
	_, err = p.ReadAt(buf, 500)
	require.Error(t, err)
}

// countingServer serves dir and counts requests.
func countingServer(t *testing.T, dir string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	files := http.FileServer(http.Dir(dir))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		files.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestOpen(t *testing.T) {
	t.Parallel()

	f := &testutil.Fixture{
		Items: [][]byte{testutil.Record(func(w *buffer.Writer) { w.PutU8(2).PutString("Bronze sword") })},
		Models: map[int][]byte{
			3: bytes.Repeat([]byte("vertex"), 400),
		},
	}
	dir := f.Save(t, t.TempDir())
	local, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	server, requests := countingServer(t, dir)
	st, err := Open(server.URL, WithPages(8, 16))
	require.NoError(t, err)
	assert.Equal(t, local.BlockCount(), st.BlockCount())
	assert.Equal(t, local.FileCount(1), st.FileCount(1))

	for _, key := range [][2]int{{0, archive.Config}, {1, 3}} {
		want, err := local.Read(key[0], key[1])
		require.NoError(t, err)
		got, err := st.Read(key[0], key[1])
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	before := requests.Load()
	_, err = st.Read(0, archive.Config)
	require.NoError(t, err)
	// Only the index entry is fetched; the blocks come from cached pages.
	assert.Equal(t, before+1, requests.Load())

	_, err = st.Read(2, 0)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	server, _ := countingServer(t, t.TempDir())
	_, err := Open(server.URL)
	require.Error(t, err)
}
