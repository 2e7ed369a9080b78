package config

import (
	"fmt"

	"github.com/meigma/gamecache/internal/buffer"
)

// recordFunc decodes the record with the given id from r.
type recordFunc[T any] func(id int, r *buffer.Reader) (*T, error)

// IndexedTable holds records addressed through an offset table.
//
// The data file starts with a u16 record count followed by the records. The
// index file repeats the count and then stores each record's length as a u16,
// so record n starts at 2 plus the sum of lengths 0..n-1.
// Records are decoded on every Get; callers cache the results.
type IndexedTable[T any] struct {
	kind    Kind
	data    []byte
	offsets []int
	decode  recordFunc[T]
}

func newIndexedTable[T any](kind Kind, data, index []byte, decode recordFunc[T]) (*IndexedTable[T], error) {
	ir := buffer.NewReader(index)
	count := ir.U16()
	if ir.Err() != nil {
		return nil, fmt.Errorf("%w: %s index header: %w", ErrCorruptTable, kind, ir.Err())
	}

	// offsets has count+1 entries; record n spans offsets[n]..offsets[n+1].
	offsets := make([]int, count+1)
	offsets[0] = 2
	for i := range count {
		offsets[i+1] = offsets[i] + ir.U16()
	}
	if ir.Err() != nil {
		return nil, fmt.Errorf("%w: %s index: %w", ErrCorruptTable, kind, ir.Err())
	}
	if end := offsets[count]; end > len(data) {
		return nil, fmt.Errorf("%w: %s records end at %d, data has %d bytes", ErrCorruptTable, kind, end, len(data))
	}

	return &IndexedTable[T]{
		kind:    kind,
		data:    data,
		offsets: offsets,
		decode:  decode,
	}, nil
}

// Len returns the number of records.
func (t *IndexedTable[T]) Len() int {
	return len(t.offsets) - 1
}

// Get decodes the record with the given id.
// The decoder sees only the record's own bytes.
func (t *IndexedTable[T]) Get(id int) (*T, error) {
	if id < 0 || id >= t.Len() {
		return nil, &NotFoundError{Kind: t.kind, ID: id}
	}
	rec := t.data[t.offsets[id]:t.offsets[id+1]]
	return t.decode(id, buffer.NewReader(rec))
}

// SequentialTable holds records stored back to back without an offset table.
//
// The whole table is decoded once when it is built. A record that fails to
// decode ends the scan: its id reports the failure and later ids report that
// they are unreachable.
type SequentialTable[T any] struct {
	kind    Kind
	count   int
	records []*T
	err     error
}

func newSequentialTable[T any](kind Kind, data []byte, decode recordFunc[T]) (*SequentialTable[T], error) {
	r := buffer.NewReader(data)
	count := r.U16()
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %s table header: %w", ErrCorruptTable, kind, r.Err())
	}

	t := &SequentialTable[T]{
		kind:    kind,
		count:   count,
		records: make([]*T, 0, count),
	}
	for id := range count {
		rec, err := decode(id, r)
		if err != nil {
			t.err = err
			break
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

// Len returns the declared number of records.
func (t *SequentialTable[T]) Len() int {
	return t.count
}

// Err returns the error that stopped the scan, if any.
func (t *SequentialTable[T]) Err() error {
	return t.err
}

// Get returns the record with the given id.
func (t *SequentialTable[T]) Get(id int) (*T, error) {
	if id < 0 || id >= t.count {
		return nil, &NotFoundError{Kind: t.kind, ID: id}
	}
	if id < len(t.records) {
		return t.records[id], nil
	}
	if id == len(t.records) {
		return nil, t.err
	}
	return nil, fmt.Errorf("config: %s %d unreachable after record %d failed: %w", t.kind, id, len(t.records), t.err)
}

// All returns every decoded record in id order.
func (t *SequentialTable[T]) All() []*T {
	return t.records
}
