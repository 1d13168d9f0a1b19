package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"latex-corrector/internal/types"
)

// DefaultMaxCacheSize is the number of documents kept when no size is configured.
const DefaultMaxCacheSize = 100

// HashContent computes the cache key of a document (SHA256, hex encoded).
func HashContent(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// CacheStats reports cache activity since creation or the last Clear.
type CacheStats struct {
	Size      int `json:"size"`
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
}

// ExerciseCache maps content hashes to detection results. It is bounded and
// evicts in insertion order: once the size limit is exceeded the oldest
// inserted key goes first. Entries never expire otherwise.
type ExerciseCache struct {
	mu      sync.Mutex
	maxSize int
	entries *orderedmap.OrderedMap[string, []types.Exercise]
	stats   CacheStats
}

// NewExerciseCache creates a cache holding at most maxSize documents.
// A non-positive maxSize falls back to DefaultMaxCacheSize.
func NewExerciseCache(maxSize int) *ExerciseCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxCacheSize
	}
	return &ExerciseCache{
		maxSize: maxSize,
		entries: orderedmap.New[string, []types.Exercise](),
	}
}

// Get returns a copy of the exercises stored under key.
func (c *ExerciseCache) Get(key string) ([]types.Exercise, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exercises, ok := c.entries.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return cloneExercises(exercises), true
}

// Put stores a copy of exercises under key and reports whether an older
// entry had to be evicted. Re-putting an existing key keeps its position.
func (c *ExerciseCache) Put(key string, exercises []types.Exercise) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Set(key, cloneExercises(exercises))
	if c.entries.Len() <= c.maxSize {
		return false
	}

	oldest := c.entries.Oldest()
	c.entries.Delete(oldest.Key)
	c.stats.Evictions++
	return true
}

// Contains reports whether key is cached without touching the hit counters.
func (c *ExerciseCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries.Get(key)
	return ok
}

// Len returns the number of cached documents.
func (c *ExerciseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// MaxSize returns the configured bound.
func (c *ExerciseCache) MaxSize() int {
	return c.maxSize
}

// Stats returns a snapshot of the cache counters.
func (c *ExerciseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.entries.Len()
	return s
}

// Clear drops every entry and resets the counters.
func (c *ExerciseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = orderedmap.New[string, []types.Exercise]()
	c.stats = CacheStats{}
}

func cloneExercises(in []types.Exercise) []types.Exercise {
	out := make([]types.Exercise, len(in))
	copy(out, in)
	return out
}
