package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gamecache/internal/buffer"
	"github.com/meigma/gamecache/internal/testutil"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// packedCache builds a source tree, packs it and returns the cache dir.
func packedCache(t *testing.T) string {
	t.Helper()

	src := t.TempDir()
	dat, idx := testutil.IndexedFiles(
		testutil.Record(func(w *buffer.Writer) { w.PutU8(2).PutString("Bronze sword") }),
	)
	writeFile(t, filepath.Join(src, "0", "2", "obj.dat"), dat)
	writeFile(t, filepath.Join(src, "0", "2", "obj.idx"), idx)
	writeFile(t, filepath.Join(src, "1", "7"), []byte("model"))
	writeFile(t, filepath.Join(src, "4", "100"), []byte("objects"))
	writeFile(t, filepath.Join(src, "4", "101"), []byte("landscape"))
	writeFile(t, filepath.Join(src, regionsFile),
		[]byte("- {x: 50, y: 50, objects: 100, landscape: 101, members: true}\n"))

	out := filepath.Join(t.TempDir(), "cache")
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"--pack-version", "3", "pack", src, out}, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "packed")
	return out
}

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestPackAndInspect(t *testing.T) {
	t.Parallel()

	dir := packedCache(t)

	out, err := runTool(t, "--cache-dir", dir, "item", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Bronze sword")

	out, err = runTool(t, "-d", dir, "archive", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "obj.dat")
	assert.Contains(t, out, "obj.idx")

	out, err = runTool(t, "-d", dir, "map", "50", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "file 100")
	assert.Contains(t, out, "9 bytes")
	assert.Contains(t, out, "true")

	out, err = runTool(t, "-d", dir, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "archive 2 (config)")
	assert.Contains(t, out, "regions")

	out, err = runTool(t, "-d", dir, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "3 ok")
	assert.Contains(t, out, "0 failed")
}

func TestRecordErrors(t *testing.T) {
	t.Parallel()

	dir := packedCache(t)

	_, err := runTool(t, "-d", dir, "item", "5")
	require.Error(t, err)

	_, err = runTool(t, "-d", dir, "item", "sword")
	require.Error(t, err)

	_, err = runTool(t, "-d", dir, "map", "1", "1")
	require.Error(t, err)

	_, err = runTool(t, "-d", dir, "teleport")
	require.ErrorContains(t, err, "unknown command")

	_, err = runTool(t)
	require.Error(t, err)
}

func TestSettingsFile(t *testing.T) {
	t.Parallel()

	dir := packedCache(t)
	cfg := filepath.Join(t.TempDir(), "cachetool.yaml")
	writeFile(t, cfg, []byte("cache_dir: "+dir+"\nlog_level: debug\nopcode_policy: skip\n"))

	var fv flagValues
	fs := newFlagSet(&fv)
	require.NoError(t, fs.Parse([]string{"--config", cfg, "--codec", "bzip2"}))
	s, err := fv.resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, dir, s.CacheDir)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "skip", s.OpcodePolicy)

	// Flags win over the file.
	fs = newFlagSet(&fv)
	require.NoError(t, fs.Parse([]string{"--config", cfg, "--log-level", "error"}))
	s, err = fv.resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "error", s.LogLevel)

	out, err := runTool(t, "--config", cfg, "item", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Bronze sword")
}

func TestBadSettings(t *testing.T) {
	t.Parallel()

	_, err := runTool(t, "--log-level", "loud", "info")
	require.ErrorContains(t, err, "log level")

	_, err = runTool(t, "--opcode-policy", "ignore", "-d", t.TempDir(), "info")
	require.Error(t, err)

	_, err = runTool(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "info")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoteCache(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.FileServer(http.Dir(packedCache(t))))
	t.Cleanup(server.Close)

	out, err := runTool(t, "--cache-url", server.URL, "item", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Bronze sword")

	out, err = runTool(t, "--cache-url", server.URL, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "3 ok")
}
