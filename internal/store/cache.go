package store

import (
	"sync"
)

// CacheStore persists serialized indexes keyed by content hash. The
// store is injectable so tests can substitute an in-memory fake.
type CacheStore interface {
	// Get returns the serialized index for key. The second return is
	// false on a miss.
	Get(key string) ([]byte, bool, error)

	// Put stores the serialized index under key, replacing any previous
	// value.
	Put(key string, value []byte) error

	// Delete removes the entry for key. Deleting a missing key is not
	// an error.
	Delete(key string) error

	// Close releases backing resources.
	Close() error
}

// MemoryCache is a process-local CacheStore.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ CacheStore = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache store.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (c *MemoryCache) Put(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = stored
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
