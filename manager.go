package gamecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/cache"
	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/config"
	"github.com/meigma/gamecache/remote"
	"github.com/meigma/gamecache/store"
	"github.com/meigma/gamecache/versionlist"
)

// Manager provides typed access to a cache.
//
// Archive, loose file and table lookups are safe for concurrent use. Item and
// object lookups share FIFO caches that are only safe for concurrent use
// with WithSynchronizedCaches.
type Manager struct {
	store  *store.Store
	closer io.Closer

	logger           *slog.Logger
	codecName        string
	codec            codec.Codec
	itemCapacity     int
	objectCapacity   int
	synchronized     bool
	policy           config.Policy
	maxFileSize      int
	maxDecoderMemory uint64
	preload          []int
	httpClient       *http.Client

	decoder *config.Decoder
	tables  *versionlist.Tables

	archiveGroup singleflight.Group
	archiveMu    sync.RWMutex
	archives     map[int]*archive.Archive

	items   cache.Records[int, *config.Item]
	objects cache.Records[int, *config.Object]

	itemTable        func() (*config.IndexedTable[config.Item], error)
	objectTable      func() (*config.IndexedTable[config.Object], error)
	sequenceTable    func() (*config.SequentialTable[config.Sequence], error)
	floorTable       func() (*config.SequentialTable[config.Floor], error)
	identityKitTable func() (*config.SequentialTable[config.IdentityKit], error)
	graphicTable     func() (*config.SequentialTable[config.Graphic], error)
	widgetTable      func() (*config.SequentialTable[config.Widget], error)
}

func newManager(opts []Option) *Manager {
	m := &Manager{
		maxFileSize:      store.DefaultMaxFileSize,
		maxDecoderMemory: codec.DefaultMaxDecoderMemory,
		archives:         make(map[int]*archive.Archive),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// New returns a Manager over an existing store and runs the bootstrap.
// The Manager does not take ownership of st; Close is a no-op.
func New(st *store.Store, opts ...Option) (*Manager, error) {
	m := newManager(opts)
	m.store = st
	if err := m.setup(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// Open opens the cache files in dir and runs the bootstrap.
// Close must be called to release the files.
func Open(dir string, opts ...Option) (*Manager, error) {
	return open(context.Background(), dir, opts)
}

func open(ctx context.Context, dir string, opts []Option) (*Manager, error) {
	m := newManager(opts)
	f, err := store.Open(dir, store.WithMaxFileSize(m.maxFileSize), store.WithLogger(m.log()))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	m.store = f.Store
	m.closer = f
	if err := m.setup(ctx); err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}

// OpenURL opens a cache served over HTTP. baseURL names the directory
// holding the cache files; the server must support range requests.
func OpenURL(baseURL string, opts ...Option) (*Manager, error) {
	m := newManager(opts)
	st, err := remote.Open(baseURL,
		remote.WithClient(m.httpClient),
		remote.WithLogger(m.log()),
		remote.WithStoreOptions(store.WithMaxFileSize(m.maxFileSize)))
	if err != nil {
		return nil, fmt.Errorf("open remote cache: %w", err)
	}
	m.store = st
	if err := m.setup(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// Close releases the cache files opened by Open or Load.
func (m *Manager) Close() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

// log returns the logger, falling back to a discard logger if nil.
func (m *Manager) log() *slog.Logger {
	if m.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.logger
}

// setup reads the setup tables and prepares the record tables.
func (m *Manager) setup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := codec.Lookup(m.codecName, codec.WithMaxDecoderMemory(m.maxDecoderMemory))
	if err != nil {
		return err
	}
	m.codec = c
	m.items = newRecords[*config.Item](m.synchronized, m.itemCapacity)
	m.objects = newRecords[*config.Object](m.synchronized, m.objectCapacity)

	a, err := m.Archive(versionlist.ArchiveID)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	m.tables, err = versionlist.Parse(a)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	m.decoder = config.NewDecoder(
		config.WithPolicy(m.policy),
		config.WithLogger(m.log()),
		config.WithFrameLengths(m.tables.FrameLength),
	)
	m.initTables()

	if err := m.preloadArchives(ctx); err != nil {
		return fmt.Errorf("setup: preload: %w", err)
	}

	m.log().Info("cache ready",
		"blocks", m.store.BlockCount(),
		"codec", m.codec.Name(),
		"regions", m.tables.RegionCount(),
		"models", m.tables.Count(versionlist.Model),
		"archives", m.archiveCount())
	return nil
}

// preloadArchives opens the WithPreload archives concurrently.
func (m *Manager) preloadArchives(ctx context.Context) error {
	if len(m.preload) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range m.preload {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := m.Archive(id)
			return err
		})
	}
	return g.Wait()
}

// Archive returns archive id from index 0, reading and parsing it on first
// use. Concurrent first requests for the same id share one read.
func (m *Manager) Archive(id int) (*archive.Archive, error) {
	if a, ok := m.cachedArchive(id); ok {
		return a, nil
	}

	result, err, _ := m.archiveGroup.Do(strconv.Itoa(id), func() (any, error) {
		if a, ok := m.cachedArchive(id); ok {
			return a, nil
		}

		data, err := m.store.Read(0, id)
		if err != nil {
			return nil, fmt.Errorf("read archive %d: %w", id, err)
		}
		a, err := archive.Parse(data, archive.WithCodec(m.codec), archive.WithLogger(m.log()))
		if err != nil {
			return nil, fmt.Errorf("parse archive %d: %w", id, err)
		}

		m.archiveMu.Lock()
		m.archives[id] = a
		m.archiveMu.Unlock()
		m.log().Debug("archive opened", "id", id, "files", a.Len(), "digest", a.Digest().String())
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	a, _ := result.(*archive.Archive) //nolint:errcheck // type assertion always succeeds when err is nil
	return a, nil
}

func (m *Manager) cachedArchive(id int) (*archive.Archive, bool) {
	m.archiveMu.RLock()
	defer m.archiveMu.RUnlock()
	a, ok := m.archives[id]
	return a, ok
}

func (m *Manager) archiveCount() int {
	m.archiveMu.RLock()
	defer m.archiveMu.RUnlock()
	return len(m.archives)
}

// archiveFile returns a file from an archive.
func (m *Manager) archiveFile(id int, name string) ([]byte, error) {
	a, err := m.Archive(id)
	if err != nil {
		return nil, err
	}
	data, err := a.Get(name)
	if err != nil {
		return nil, fmt.Errorf("archive %d: %w", id, err)
	}
	return data, nil
}

// Tables returns the setup tables.
func (m *Manager) Tables() *versionlist.Tables {
	return m.tables
}

// Store returns the underlying block store.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Codec returns the archive codec.
func (m *Manager) Codec() codec.Codec {
	return m.codec
}

// ClearTempCaches empties the item and object caches.
func (m *Manager) ClearTempCaches() {
	m.items.Clear()
	m.objects.Clear()
	m.log().Debug("record caches cleared")
}

// CacheStats returns the item and object cache counters.
func (m *Manager) CacheStats() (items, objects cache.Stats) {
	return m.items.Stats(), m.objects.Stats()
}

// ensureOpen reports an error for a zero Manager.
func (m *Manager) ensureOpen() error {
	if m.tables == nil {
		return errors.New("gamecache: manager not initialized")
	}
	return nil
}
