package geocode

import (
	"sync"
	"time"

	"github.com/example/bidngo-client/internal/models"
)

// Cache is a tiny in-memory TTL cache for geocoding lookups keyed by the
// raw address string.
type Cache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	v  models.Place
	ts time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{store: make(map[string]cacheEntry), ttl: ttl}
}

func (c *Cache) Get(address string) (models.Place, bool) {
	c.mu.RLock()
	e, ok := c.store[address]
	c.mu.RUnlock()
	if !ok {
		return models.Place{}, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, address)
		c.mu.Unlock()
		return models.Place{}, false
	}
	return e.v, true
}

func (c *Cache) Set(address string, p models.Place) {
	c.mu.Lock()
	c.store[address] = cacheEntry{v: p, ts: time.Now()}
	c.mu.Unlock()
}
