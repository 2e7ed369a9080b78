package archive

import (
	"errors"
	"fmt"

	"github.com/meigma/gamecache/internal/buffer"
)

const maxU24 = 1<<24 - 1

type builderFile struct {
	hash int32
	data []byte
}

// Builder assembles a container.
//
// By default every file is compressed separately. WithWholeCompression stores
// files raw and compresses the whole body instead.
type Builder struct {
	opts  options
	files []builderFile
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: newOptions(opts)}
}

// Add appends a file under name.
func (b *Builder) Add(name string, data []byte) *Builder {
	return b.AddHash(Hash(name), data)
}

// AddHash appends a file under a precomputed name hash.
func (b *Builder) AddHash(h int32, data []byte) *Builder {
	b.files = append(b.files, builderFile{hash: h, data: data})
	return b
}

// Payload returns the uncompressed body that whole compression would pack:
// the file table followed by the raw file bytes.
func (b *Builder) Payload() ([]byte, error) {
	sizes := make([]int, len(b.files))
	data := make([][]byte, len(b.files))
	for i, f := range b.files {
		sizes[i] = len(f.data)
		data[i] = f.data
	}
	return b.body(sizes, data)
}

// Build returns the encoded container.
func (b *Builder) Build() ([]byte, error) {
	if b.opts.whole {
		payload, err := b.Payload()
		if err != nil {
			return nil, err
		}
		packed, err := b.opts.codec.Compress(payload)
		if err != nil {
			return nil, err
		}
		if len(packed) == len(payload) {
			// Equal sizes would read back as an uncompressed container.
			return nil, errors.New("archive: compressed body size equals payload size")
		}
		return b.container(len(payload), packed)
	}

	packedSizes := make([]int, len(b.files))
	packed := make([][]byte, len(b.files))
	for i, f := range b.files {
		if len(f.data) == 0 {
			continue
		}
		p, err := b.opts.codec.Compress(f.data)
		if err != nil {
			return nil, fmt.Errorf("compress file %d: %w", i, err)
		}
		packedSizes[i] = len(p)
		packed[i] = p
	}
	body, err := b.body(packedSizes, packed)
	if err != nil {
		return nil, err
	}
	return b.container(len(body), body)
}

func (b *Builder) body(packedSizes []int, packed [][]byte) ([]byte, error) {
	if len(b.files) > 0xffff {
		return nil, fmt.Errorf("archive: %d files exceeds 65535", len(b.files))
	}
	w := buffer.NewWriter(2 + descriptorSize*len(b.files))
	w.PutU16(len(b.files))
	for i, f := range b.files {
		if len(f.data) > maxU24 || packedSizes[i] > maxU24 {
			return nil, fmt.Errorf("archive: file %d is too large (%d bytes)", i, len(f.data))
		}
		w.PutI32(f.hash).PutU24(len(f.data)).PutU24(packedSizes[i])
	}
	for _, p := range packed {
		w.PutBytes(p)
	}
	return w.Bytes(), nil
}

func (b *Builder) container(size int, body []byte) ([]byte, error) {
	if size > maxU24 || len(body) > maxU24 {
		return nil, fmt.Errorf("archive: body is too large (%d bytes)", size)
	}
	w := buffer.NewWriter(headerSize + len(body))
	w.PutU24(size).PutU24(len(body)).PutBytes(body)
	return w.Bytes(), nil
}
