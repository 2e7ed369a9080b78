// Package cache provides small bounded caches for decoded records.
//
// Bounded keeps at most a fixed number of entries in insertion order and
// evicts the oldest insert when full. Hits do not reorder entries: the policy
// is FIFO, not LRU. Lookups scan linearly, which is the right trade-off for
// the tiny capacities used in front of record decoders.
package cache

import "sync"

// DefaultCapacity is the capacity used for item and object record caches.
const DefaultCapacity = 15

// DecodeFunc produces the value for a key on a cache miss.
type DecodeFunc[K comparable, V any] func(K) (V, error)

// Stats contains counters describing cache behaviour.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Bounded is a fixed-capacity, insertion-ordered cache.
//
// Bounded is not safe for concurrent use; wrap it with Synchronized when
// several goroutines share one instance.
type Bounded[K comparable, V any] struct {
	capacity int
	entries  []entry[K, V]
	stats    Stats
}

// New returns a Bounded cache holding at most capacity entries.
// Capacities below 1 use DefaultCapacity.
func New[K comparable, V any](capacity int) *Bounded[K, V] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Bounded[K, V]{
		capacity: capacity,
		entries:  make([]entry[K, V], 0, capacity+1),
	}
}

// Get returns the cached value for key.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	for i := range c.entries {
		if c.entries[i].key == key {
			c.stats.Hits++
			return c.entries[i].value, true
		}
	}
	var zero V
	return zero, false
}

// GetOrDecode returns the cached value for key, calling decode on a miss.
// Decode errors are returned to the caller and nothing is cached.
func (c *Bounded[K, V]) GetOrDecode(key K, decode DecodeFunc[K, V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	c.stats.Misses++
	v, err := decode(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, v)
	return v, nil
}

// Put appends an entry and evicts the oldest entries beyond capacity.
// Putting an existing key appends a second entry; lookups see the older one
// until it is evicted.
func (c *Bounded[K, V]) Put(key K, value V) {
	c.entries = append(c.entries, entry[K, V]{key: key, value: value})
	if over := len(c.entries) - c.capacity; over > 0 {
		clear(c.entries[:over])
		c.entries = append(c.entries[:0], c.entries[over:]...)
		c.stats.Evictions += int64(over)
	}
}

// Len returns the number of cached entries.
func (c *Bounded[K, V]) Len() int {
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Bounded[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys from oldest to newest.
func (c *Bounded[K, V]) Keys() []K {
	keys := make([]K, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.key
	}
	return keys
}

// Clear removes every entry. Counters are kept.
func (c *Bounded[K, V]) Clear() {
	clear(c.entries)
	c.entries = c.entries[:0]
}

// Stats returns a snapshot of the cache counters.
func (c *Bounded[K, V]) Stats() Stats {
	return c.stats
}

// Synchronized guards a Bounded cache with a mutex.
//
// The decode function runs under the lock, so concurrent misses for the same
// key decode once.
type Synchronized[K comparable, V any] struct {
	mu sync.Mutex
	c  *Bounded[K, V]
}

// NewSynchronized returns a mutex-guarded Bounded cache.
func NewSynchronized[K comparable, V any](capacity int) *Synchronized[K, V] {
	return &Synchronized[K, V]{c: New[K, V](capacity)}
}

// GetOrDecode returns the cached value for key, calling decode on a miss.
func (s *Synchronized[K, V]) GetOrDecode(key K, decode DecodeFunc[K, V]) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.GetOrDecode(key, decode)
}

// Len returns the number of cached entries.
func (s *Synchronized[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Len()
}

// Clear removes every entry.
func (s *Synchronized[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Clear()
}

// Stats returns a snapshot of the cache counters.
func (s *Synchronized[K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Stats()
}

// Records is the interface shared by Bounded and Synchronized.
type Records[K comparable, V any] interface {
	GetOrDecode(key K, decode DecodeFunc[K, V]) (V, error)
	Len() int
	Clear()
	Stats() Stats
}

// Interface compliance.
var (
	_ Records[int, string] = (*Bounded[int, string])(nil)
	_ Records[int, string] = (*Synchronized[int, string])(nil)
)
