// Package archive parses the named multi-file container stored in cache
// index 0.
//
// A container starts with a 6-byte header (decompressed size, compressed
// size). When the sizes differ the rest of the container is one compressed
// stream that must be inflated before the file table can be read; otherwise
// each file is compressed on its own. Files are addressed by a 32-bit hash of
// their upper-cased name.
package archive

import (
	"fmt"
	"iter"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/internal/buffer"
)

const (
	headerSize     = 6
	descriptorSize = 10
)

// Well-known archive ids in cache index 0.
const (
	Title       = 1
	Config      = 2
	Interface   = 3
	Media       = 4
	VersionList = 5
	Textures    = 6
	WordFilter  = 7
	Sounds      = 8
)

// Hash returns the lookup hash of a file name.
// Names are case-folded to upper case; arithmetic wraps at 32 bits.
func Hash(name string) int32 {
	var h int32
	for i := range len(name) {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		h = h*61 + int32(c) - 32
	}
	return h
}

// Descriptor describes one file in an archive.
type Descriptor struct {
	// Hash is the name hash of the file.
	Hash int32

	// Size is the decompressed size in bytes.
	Size int

	// PackedSize is the stored size in bytes.
	PackedSize int

	// Offset is the start of the file's bytes in the archive payload.
	Offset int
}

// Archive provides read access to the files in a container.
//
// An Archive is immutable after Parse and safe for concurrent use.
type Archive struct {
	payload []byte
	files   []Descriptor
	whole   bool
	codec   codec.Codec
	digest  digest.Digest
}

// Parse decodes a container.
//
// The provided data is retained by the archive when it is not compressed as
// a whole; callers must not modify it after calling Parse.
func Parse(data []byte, opts ...Option) (*Archive, error) {
	o := newOptions(opts)

	r := buffer.NewReader(data)
	size := r.U24()
	packed := r.U24()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	a := &Archive{
		codec:  o.codec,
		digest: digest.FromBytes(data),
	}
	body := data[headerSize:]
	if size != packed {
		if packed > len(body) {
			return nil, fmt.Errorf("%w: compressed body is %d bytes, header declares %d", ErrCorrupt, len(body), packed)
		}
		out, err := o.codec.Decompress(body[:packed], size)
		if err != nil {
			return nil, fmt.Errorf("%w: archive body: %w", ErrDecompression, err)
		}
		body = out
		a.whole = true
	}
	a.payload = body

	r = buffer.NewReader(body)
	count := r.U16()
	a.files = make([]Descriptor, count)
	for i := range a.files {
		a.files[i] = Descriptor{
			Hash:       r.I32(),
			Size:       r.U24(),
			PackedSize: r.U24(),
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: descriptor table: %w", ErrCorrupt, err)
	}

	offset := r.Pos()
	for i := range a.files {
		f := &a.files[i]
		f.Offset = offset
		stored := f.PackedSize
		if a.whole {
			stored = f.Size
		}
		if offset+stored > len(body) {
			return nil, fmt.Errorf("%w: file %d (hash %d) spans %d..%d of %d bytes",
				ErrCorrupt, i, f.Hash, offset, offset+stored, len(body))
		}
		offset += f.PackedSize
	}

	o.log().Debug("archive parsed",
		"files", count, "extracted_as_whole", a.whole, "digest", a.digest.String())
	return a, nil
}

// Get returns the contents of the named file.
func (a *Archive) Get(name string) ([]byte, error) {
	h := Hash(name)
	f, ok := a.lookup(h)
	if !ok {
		return nil, &FileNotFoundError{Name: name, Hash: h}
	}
	return a.read(f)
}

// GetHash returns the contents of the file with the given name hash.
// When several files share the hash the first one wins.
func (a *Archive) GetHash(h int32) ([]byte, error) {
	f, ok := a.lookup(h)
	if !ok {
		return nil, &FileNotFoundError{Hash: h}
	}
	return a.read(f)
}

// Has reports whether the archive contains the named file.
func (a *Archive) Has(name string) bool {
	_, ok := a.lookup(Hash(name))
	return ok
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.files)
}

// ExtractedAsWhole reports whether the archive body was compressed as one
// stream.
func (a *Archive) ExtractedAsWhole() bool {
	return a.whole
}

// Digest returns the content digest of the raw container bytes.
func (a *Archive) Digest() digest.Digest {
	return a.digest
}

// Payload returns the container body after any whole-archive decompression.
// The returned slice aliases archive data and must be treated as immutable.
func (a *Archive) Payload() []byte {
	return a.payload
}

// Entries returns an iterator over the file descriptors in stored order.
func (a *Archive) Entries() iter.Seq[Descriptor] {
	return func(yield func(Descriptor) bool) {
		for _, f := range a.files {
			if !yield(f) {
				return
			}
		}
	}
}

func (a *Archive) lookup(h int32) (*Descriptor, bool) {
	for i := range a.files {
		if a.files[i].Hash == h {
			return &a.files[i], true
		}
	}
	return nil, false
}

func (a *Archive) read(f *Descriptor) ([]byte, error) {
	if f.Size == 0 {
		return []byte{}, nil
	}
	if a.whole {
		out := make([]byte, f.Size)
		copy(out, a.payload[f.Offset:f.Offset+f.Size])
		return out, nil
	}
	out, err := a.codec.Decompress(a.payload[f.Offset:f.Offset+f.PackedSize], f.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: file hash %d: %w", ErrDecompression, f.Hash, err)
	}
	return out, nil
}
