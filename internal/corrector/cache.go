package corrector

import (
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"latex-corrector/internal/parser"
)

// DefaultCacheSize is the default number of corrections kept in memory.
const DefaultCacheSize = 50

// DefaultCacheTTL is how long a correction stays valid by default.
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	correction string
	storedAt   time.Time
}

// CorrectionCache keeps generated corrections keyed by exercise content.
// Entries expire after the TTL; when full, the oldest insertion is evicted.
type CorrectionCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	entries *orderedmap.OrderedMap[string, cacheEntry]
}

// NewCorrectionCache creates a cache. Non-positive values fall back to defaults.
func NewCorrectionCache(maxSize int, ttl time.Duration) *CorrectionCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CorrectionCache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		entries: orderedmap.New[string, cacheEntry](),
	}
}

// Get returns the cached correction for the exercise content, if still fresh.
func (c *CorrectionCache) Get(exerciseContent string) (string, bool) {
	key := parser.HashContent(exerciseContent)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.entries.Delete(key)
		return "", false
	}
	return entry.correction, true
}

// Put stores a correction, evicting the oldest entry when the cache is full.
func (c *CorrectionCache) Put(exerciseContent, correction string) {
	key := parser.HashContent(exerciseContent)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-inserting moves the key to the back of the FIFO.
	c.entries.Delete(key)
	for c.entries.Len() >= c.maxSize {
		oldest := c.entries.Oldest()
		if oldest == nil {
			break
		}
		c.entries.Delete(oldest.Key)
	}
	c.entries.Set(key, cacheEntry{correction: correction, storedAt: c.now()})
}

// Len returns the number of stored entries, expired ones included.
func (c *CorrectionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Clear removes every entry.
func (c *CorrectionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = orderedmap.New[string, cacheEntry]()
}
