package versionlist

import (
	"hash/crc32"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/internal/buffer"
)

// Builder assembles setup tables and writes them into an archive.
type Builder struct {
	versions     [4][]int
	crcs         [4][]uint32
	modelFlags   []int
	regions      []Region
	frameLengths []int
	midiFlags    []int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// grow extends s so that index id is addressable.
func grow[T any](s []T, id int) []T {
	if id < len(s) {
		return s
	}
	return append(s, make([]T, id+1-len(s))...)
}

// AddFile records the version and checksum of a stored file. data is the
// file as stored in its index, including any version trailer; the checksum
// covers the bytes before the trailer.
func (b *Builder) AddFile(k Kind, id int, data []byte) *Builder {
	body, version := SplitTrailer(data)
	b.SetVersion(k, id, version)
	b.SetCRC(k, id, crc32.ChecksumIEEE(body))
	return b
}

// SetVersion sets the version of a file.
func (b *Builder) SetVersion(k Kind, id, version int) *Builder {
	b.versions[k] = grow(b.versions[k], id)
	b.versions[k][id] = version
	return b
}

// SetCRC sets the expected checksum of a file.
func (b *Builder) SetCRC(k Kind, id int, crc uint32) *Builder {
	b.crcs[k] = grow(b.crcs[k], id)
	b.crcs[k][id] = crc
	return b
}

// SetModelFlags sets the flag byte of a model.
func (b *Builder) SetModelFlags(id, flags int) *Builder {
	b.modelFlags = grow(b.modelFlags, id)
	b.modelFlags[id] = flags
	return b
}

// SetFrameLength sets the display length of an animation frame.
func (b *Builder) SetFrameLength(id, length int) *Builder {
	b.frameLengths = grow(b.frameLengths, id)
	b.frameLengths[id] = length
	return b
}

// SetMidiFlags sets the flag byte of a midi file.
func (b *Builder) SetMidiFlags(id, flags int) *Builder {
	b.midiFlags = grow(b.midiFlags, id)
	b.midiFlags[id] = flags
	return b
}

// AddRegion registers a map region.
func (b *Builder) AddRegion(r Region) *Builder {
	b.regions = append(b.regions, r)
	return b
}

// WriteTo adds every non-empty table to an archive under construction.
func (b *Builder) WriteTo(ab *archive.Builder) {
	for _, k := range Kinds {
		if len(b.versions[k]) > 0 {
			w := buffer.NewWriter(len(b.versions[k]) * 2)
			for _, v := range b.versions[k] {
				w.PutU16(v)
			}
			ab.Add(k.String()+"_version", w.Bytes())
		}
		if len(b.crcs[k]) > 0 {
			w := buffer.NewWriter(len(b.crcs[k]) * 4)
			for _, c := range b.crcs[k] {
				w.PutI32(int32(c))
			}
			ab.Add(k.String()+"_crc", w.Bytes())
		}
	}
	if len(b.modelFlags) > 0 {
		ab.Add("model_index", bytesOf(b.modelFlags))
	}
	if len(b.frameLengths) > 0 {
		w := buffer.NewWriter(len(b.frameLengths) * 2)
		for _, v := range b.frameLengths {
			w.PutU16(v)
		}
		ab.Add("anim_index", w.Bytes())
	}
	if len(b.midiFlags) > 0 {
		ab.Add("midi_index", bytesOf(b.midiFlags))
	}
	if len(b.regions) > 0 {
		w := buffer.NewWriter(len(b.regions) * regionEntrySize)
		for _, r := range b.regions {
			members := 0
			if r.Members {
				members = 1
			}
			w.PutU16(r.ID()).PutU16(r.ObjectFile).PutU16(r.LandscapeFile).PutU8(members)
		}
		ab.Add("map_index", w.Bytes())
	}
}

func bytesOf(values []int) []byte {
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = byte(v)
	}
	return out
}
