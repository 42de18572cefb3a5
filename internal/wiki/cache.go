package wiki

import "sync"

// Key identifies one lookup.
type Key struct {
	Title  string
	Author string
}

func (k Key) String() string {
	return k.Title + "\x00" + k.Author
}

// Cache memoizes lookup results for the lifetime of one process.
// Entries are never replaced or invalidated.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]Result
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]Result)}
}

// Get returns the cached result for k.
func (c *Cache) Get(k Key) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[k]
	return r, ok
}

// Add stores r for k unless an entry already exists. It returns the entry
// that is cached after the call.
func (c *Cache) Add(k Key, r Result) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[k]; ok {
		return existing
	}
	c.entries[k] = r
	return r
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
