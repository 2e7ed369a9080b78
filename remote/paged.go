package remote

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/gamecache/cache"
	"github.com/meigma/gamecache/store"
)

// Paged wraps a source and reads it in fixed-size pages, keeping the most
// recently fetched pages in a FIFO cache. Block chains are usually laid out
// contiguously, so one page serves several consecutive block reads.
type Paged struct {
	src      store.ByteSource
	pageSize int64
	pages    *cache.Synchronized[int64, []byte]
}

// NewPaged returns a Paged source with pages of pageSize bytes and room for
// count pages.
func NewPaged(src store.ByteSource, pageSize int64, count int) *Paged {
	return &Paged{
		src:      src,
		pageSize: pageSize,
		pages:    cache.NewSynchronized[int64, []byte](count),
	}
}

// Size returns the size of the wrapped source.
func (p *Paged) Size() int64 {
	return p.src.Size()
}

// SourceID returns the wrapped source's id.
func (p *Paged) SourceID() string {
	return p.src.SourceID()
}

// Stats returns the page cache counters.
func (p *Paged) Stats() cache.Stats {
	return p.pages.Stats()
}

// ReadAt copies from the cached pages covering [off, off+len(b)).
func (p *Paged) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("remote: read at %d: negative offset", off)
	}
	size := p.src.Size()
	n := 0
	for n < len(b) {
		pos := off + int64(n)
		if pos >= size {
			return n, io.EOF
		}
		index := pos / p.pageSize
		page, err := p.pages.GetOrDecode(index, p.fetch)
		if err != nil {
			return n, err
		}
		start := int(pos - index*p.pageSize)
		if start >= len(page) {
			return n, io.EOF
		}
		n += copy(b[n:], page[start:])
	}
	return n, nil
}

func (p *Paged) fetch(index int64) ([]byte, error) {
	start := index * p.pageSize
	length := min(p.pageSize, p.src.Size()-start)
	page := make([]byte, length)
	n, err := p.src.ReadAt(page, start)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(page)) {
		return nil, err
	}
	return page, nil
}

// Interface compliance.
var _ store.ByteSource = (*Paged)(nil)
