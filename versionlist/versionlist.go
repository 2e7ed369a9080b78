// Package versionlist reads the global lookup tables stored in the setup
// archive: per-category file versions and checksums, model flags, the map
// region index, animation frame lengths and midi flags.
//
// The tables are flat arrays keyed by small integer ids. They are parsed once
// at startup and never modified.
package versionlist

import (
	"errors"
	"fmt"
	"iter"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/internal/buffer"
)

// ArchiveID is the id of the setup archive in cache index 0.
const ArchiveID = archive.VersionList

// ErrCorrupt is returned when a table's length is not a whole number of
// entries.
var ErrCorrupt = errors.New("versionlist: corrupt table")

// Kind is a category of loose files stored in its own cache index.
type Kind int

// File categories.
const (
	Model Kind = iota
	Anim
	Midi
	Map
)

// Kinds lists every category in index order.
var Kinds = []Kind{Model, Anim, Midi, Map}

// String returns the category name used in table file names.
func (k Kind) String() string {
	switch k {
	case Model:
		return "model"
	case Anim:
		return "anim"
	case Midi:
		return "midi"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Index returns the cache index holding files of this category.
func (k Kind) Index() int {
	return int(k) + 1
}

func (k Kind) valid() bool {
	return k >= Model && k <= Map
}

// Region maps a map region to the files holding its contents.
type Region struct {
	X             int
	Y             int
	ObjectFile    int
	LandscapeFile int
	Members       bool
}

// ID returns the packed region coordinate.
func (r Region) ID() int {
	return r.X<<8 | r.Y
}

// regionEntrySize is the encoded size of a Region.
const regionEntrySize = 7

// Tables holds the parsed setup tables.
type Tables struct {
	versions     [4][]int
	crcs         [4][]uint32
	modelFlags   []int
	regions      []Region
	frameLengths []int
	midiFlags    []int
}

// Parse reads the tables from the setup archive. Files missing from the
// archive produce empty tables.
func Parse(a *archive.Archive) (*Tables, error) {
	t := &Tables{}
	for _, k := range Kinds {
		vs, err := readTable(a, k.String()+"_version", 2, (*buffer.Reader).U16)
		if err != nil {
			return nil, err
		}
		t.versions[k] = vs

		crcs, err := readTable(a, k.String()+"_crc", 4, (*buffer.Reader).U32)
		if err != nil {
			return nil, err
		}
		t.crcs[k] = crcs
	}

	var err error
	if t.modelFlags, err = readTable(a, "model_index", 1, (*buffer.Reader).U8); err != nil {
		return nil, err
	}
	if t.frameLengths, err = readTable(a, "anim_index", 2, (*buffer.Reader).U16); err != nil {
		return nil, err
	}
	if t.midiFlags, err = readTable(a, "midi_index", 1, (*buffer.Reader).U8); err != nil {
		return nil, err
	}
	t.regions, err = readTable(a, "map_index", regionEntrySize, func(r *buffer.Reader) Region {
		id := r.U16()
		return Region{
			X:             id >> 8,
			Y:             id & 0xff,
			ObjectFile:    r.U16(),
			LandscapeFile: r.U16(),
			Members:       r.U8() == 1,
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// readTable decodes every fixed-size entry of the named file.
func readTable[T any](a *archive.Archive, name string, size int, read func(*buffer.Reader) T) ([]T, error) {
	data, err := a.Get(name)
	if errors.Is(err, archive.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("versionlist: read %s: %w", name, err)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, not a multiple of %d", ErrCorrupt, name, len(data), size)
	}

	r := buffer.NewReader(data)
	out := make([]T, len(data)/size)
	for i := range out {
		out[i] = read(r)
	}
	return out, nil
}

// Count returns the number of versioned files of a category.
func (t *Tables) Count(k Kind) int {
	if !k.valid() {
		return 0
	}
	return len(t.versions[k])
}

// Version returns the version of a file.
func (t *Tables) Version(k Kind, id int) (int, bool) {
	if !k.valid() || id < 0 || id >= len(t.versions[k]) {
		return 0, false
	}
	return t.versions[k][id], true
}

// CRC returns the expected checksum of a file.
func (t *Tables) CRC(k Kind, id int) (uint32, bool) {
	if !k.valid() || id < 0 || id >= len(t.crcs[k]) {
		return 0, false
	}
	return t.crcs[k][id], true
}

// ModelFlags returns the flag byte of a model, or 0 when unknown.
func (t *Tables) ModelFlags(id int) int {
	return at(t.modelFlags, id)
}

// FrameLength returns the display length of an animation frame, or 0 when
// unknown.
func (t *Tables) FrameLength(id int) int {
	return at(t.frameLengths, id)
}

// MidiFlags returns the flag byte of a midi file, or 0 when unknown.
func (t *Tables) MidiFlags(id int) int {
	return at(t.midiFlags, id)
}

func at(s []int, id int) int {
	if id < 0 || id >= len(s) {
		return 0
	}
	return s[id]
}

// Region returns the first region registered at (x, y).
func (t *Tables) Region(x, y int) (Region, bool) {
	id := x<<8 | y
	for _, r := range t.regions {
		if r.ID() == id {
			return r, true
		}
	}
	return Region{}, false
}

// MapID returns the file id of a region's contents: the object file for
// kind 0 and the landscape file for kind 1. It returns -1 for unregistered
// regions and other kinds.
func (t *Tables) MapID(x, y, kind int) int {
	r, ok := t.Region(x, y)
	if !ok {
		return -1
	}
	switch kind {
	case 0:
		return r.ObjectFile
	case 1:
		return r.LandscapeFile
	default:
		return -1
	}
}

// IsMembersRegion reports whether (x, y) is a registered members region.
func (t *Tables) IsMembersRegion(x, y int) bool {
	r, ok := t.Region(x, y)
	return ok && r.Members
}

// Regions iterates over the registered regions in table order.
func (t *Tables) Regions() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for _, r := range t.regions {
			if !yield(r) {
				return
			}
		}
	}
}

// RegionCount returns the number of registered regions.
func (t *Tables) RegionCount() int {
	return len(t.regions)
}
