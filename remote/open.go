package remote

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/meigma/gamecache/store"
)

var errNotFound = errors.New("remote: file not found")

// Open returns a store reading the cache files under baseURL. Index 0 must
// exist; other missing index files are treated as empty indices.
func Open(baseURL string, opts ...Option) (*store.Store, error) {
	o := newOptions(opts)

	data, err := newSource(baseURL, store.DataFileName, o)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	var dataSrc store.ByteSource = data
	if o.pageBlocks > 0 {
		dataSrc = NewPaged(data, int64(o.pageBlocks)*store.BlockSize, o.pageCount)
	}

	indices := make([]store.ByteSource, store.DefaultIndexCount)
	for i := range indices {
		src, err := newSource(baseURL, store.IndexFileName(i), o)
		if err != nil {
			if i > 0 && errors.Is(err, errNotFound) {
				o.log().Debug("remote index missing", "index", i)
				continue
			}
			return nil, fmt.Errorf("open index %d: %w", i, err)
		}
		indices[i] = src
	}

	o.log().Info("remote cache opened", "url", baseURL, "data_bytes", data.Size())
	return store.New(dataSrc, indices, append([]store.Option{store.WithLogger(o.logger)}, o.storeOpts...)...)
}

func newSource(baseURL, name string, o options) (*Source, error) {
	u, err := url.JoinPath(baseURL, name)
	if err != nil {
		return nil, err
	}
	return openSource(u, o)
}
