// Package gamecache reads the asset cache of a tile-based game client.
//
// A cache directory holds one block data file and several index files. Index
// 0 stores archives, named multi-file containers holding definition tables;
// indices 1 to 4 store gzip-compressed models, animation frames, midis and
// map regions.
//
// [Manager] bootstraps the setup tables once and then answers typed queries:
//
//	m, err := gamecache.Open("/var/lib/game/cache")
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	sword, err := m.ItemConfig(1277)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sword.Name)
//
// Archives are opened on first use and kept for the life of the Manager.
// Decoded items and objects are held in small FIFO caches; every other
// record kind is decoded once per table.
//
// # Background loading
//
// [Load] runs the bootstrap in a goroutine and returns a [Loader] whose
// Ready channel closes when it finishes:
//
//	l := gamecache.Load(ctx, dir)
//	<-l.Ready()
//	m, err := l.Wait(ctx)
//
// # Concurrency
//
// Archive and file reads are safe for concurrent use. Typed accessors share
// unguarded record caches unless [WithSynchronizedCaches] is set.
//
// The block store, archive container, record decoders and setup tables are
// available on their own in the store, archive, config and versionlist
// packages.
package gamecache
