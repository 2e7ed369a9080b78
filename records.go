package gamecache

import (
	"fmt"
	"sync"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/config"
)

// Record table file names.
const (
	itemDataFile        = "obj.dat"
	itemIndexFile       = "obj.idx"
	objectDataFile      = "loc.dat"
	objectIndexFile     = "loc.idx"
	sequenceFile        = "seq.dat"
	floorFile           = "flo.dat"
	identityKitFile     = "idk.dat"
	graphicFile         = "spotanim.dat"
	widgetFile          = "data"
)

// initTables prepares the lazily built record tables. Each table is read and
// indexed once, on first use.
func (m *Manager) initTables() {
	m.itemTable = sync.OnceValues(func() (*config.IndexedTable[config.Item], error) {
		data, index, err := m.indexedFiles(itemDataFile, itemIndexFile)
		if err != nil {
			return nil, err
		}
		return m.decoder.ItemTable(data, index)
	})
	m.objectTable = sync.OnceValues(func() (*config.IndexedTable[config.Object], error) {
		data, index, err := m.indexedFiles(objectDataFile, objectIndexFile)
		if err != nil {
			return nil, err
		}
		return m.decoder.ObjectTable(data, index)
	})
	m.sequenceTable = sync.OnceValues(func() (*config.SequentialTable[config.Sequence], error) {
		return sequentialTable(m, archive.Config, sequenceFile, m.decoder.SequenceTable)
	})
	m.floorTable = sync.OnceValues(func() (*config.SequentialTable[config.Floor], error) {
		return sequentialTable(m, archive.Config, floorFile, m.decoder.FloorTable)
	})
	m.identityKitTable = sync.OnceValues(func() (*config.SequentialTable[config.IdentityKit], error) {
		return sequentialTable(m, archive.Config, identityKitFile, m.decoder.IdentityKitTable)
	})
	m.graphicTable = sync.OnceValues(func() (*config.SequentialTable[config.Graphic], error) {
		return sequentialTable(m, archive.Config, graphicFile, m.decoder.GraphicTable)
	})
	m.widgetTable = sync.OnceValues(func() (*config.SequentialTable[config.Widget], error) {
		return sequentialTable(m, archive.Interface, widgetFile, m.decoder.WidgetTable)
	})
}

func (m *Manager) indexedFiles(dataName, indexName string) (data, index []byte, err error) {
	if data, err = m.archiveFile(archive.Config, dataName); err != nil {
		return nil, nil, err
	}
	if index, err = m.archiveFile(archive.Config, indexName); err != nil {
		return nil, nil, err
	}
	return data, index, nil
}

func sequentialTable[T any](m *Manager, id int, name string, build func([]byte) (*config.SequentialTable[T], error)) (*config.SequentialTable[T], error) {
	data, err := m.archiveFile(id, name)
	if err != nil {
		return nil, err
	}
	t, err := build(data)
	if err != nil {
		return nil, err
	}
	if t.Err() != nil {
		m.log().Warn("record table scan stopped early", "file", name, "decoded", len(t.All()), "declared", t.Len(), "error", t.Err())
	}
	return t, nil
}

// ItemConfig returns the item with the given id. Noted items are returned in
// their derived form.
func (m *Manager) ItemConfig(id int) (*config.Item, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	return m.items.GetOrDecode(id, m.decodeItem)
}

func (m *Manager) decodeItem(id int) (*config.Item, error) {
	m.log().Debug("item cache miss", "id", id)
	t, err := m.itemTable()
	if err != nil {
		return nil, err
	}
	it, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	if !it.IsNote() {
		return it, nil
	}

	template, err := t.Get(it.NoteTemplate)
	if err != nil {
		return nil, fmt.Errorf("item %d note template: %w", id, err)
	}
	base, err := t.Get(it.NoteID)
	if err != nil {
		return nil, fmt.Errorf("item %d noted item: %w", id, err)
	}
	return it.ToNote(template, base), nil
}

// ObjectConfig returns the world object with the given id.
func (m *Manager) ObjectConfig(id int) (*config.Object, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	return m.objects.GetOrDecode(id, func(id int) (*config.Object, error) {
		m.log().Debug("object cache miss", "id", id)
		t, err := m.objectTable()
		if err != nil {
			return nil, err
		}
		return t.Get(id)
	})
}

// ItemCount returns the number of item records.
func (m *Manager) ItemCount() (int, error) {
	t, err := m.itemTable()
	if err != nil {
		return 0, err
	}
	return t.Len(), nil
}

// ObjectCount returns the number of object records.
func (m *Manager) ObjectCount() (int, error) {
	t, err := m.objectTable()
	if err != nil {
		return 0, err
	}
	return t.Len(), nil
}

// WidgetConfig returns the interface widget with the given id.
func (m *Manager) WidgetConfig(id int) (*config.Widget, error) {
	return lookup(m, m.widgetTable, id)
}

// Sequence returns the animation sequence with the given id.
func (m *Manager) Sequence(id int) (*config.Sequence, error) {
	return lookup(m, m.sequenceTable, id)
}

// FloorConfig returns the floor with the given id.
func (m *Manager) FloorConfig(id int) (*config.Floor, error) {
	return lookup(m, m.floorTable, id)
}

// IdentityKitConfig returns the identity kit with the given id.
func (m *Manager) IdentityKitConfig(id int) (*config.IdentityKit, error) {
	return lookup(m, m.identityKitTable, id)
}

// GraphicConfig returns the spot animation with the given id.
func (m *Manager) GraphicConfig(id int) (*config.Graphic, error) {
	return lookup(m, m.graphicTable, id)
}

func lookup[T any](m *Manager, table func() (*config.SequentialTable[T], error), id int) (*T, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	t, err := table()
	if err != nil {
		return nil, err
	}
	return t.Get(id)
}
