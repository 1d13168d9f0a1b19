package parser

import (
	"iter"
	"time"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
)

// DefaultMaxCachedExercises caps the size of a result worth caching.
const DefaultMaxCachedExercises = 100

// Options configures a Detector.
type Options struct {
	// EnableCache memoizes results by content hash.
	EnableCache bool
	// MaxCacheSize bounds the number of cached documents.
	MaxCacheSize int
	// MaxTitleLength is the number of enonce characters kept in titles.
	MaxTitleLength int
	// MaxCachedExercises is the largest result stored in the cache;
	// bigger documents are always rescanned.
	MaxCachedExercises int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		EnableCache:        true,
		MaxCacheSize:       DefaultMaxCacheSize,
		MaxTitleLength:     DefaultMaxTitleLength,
		MaxCachedExercises: DefaultMaxCachedExercises,
	}
}

// Recorder receives detection measurements. metrics.Collector implements it.
type Recorder interface {
	ObserveDetection(elapsed time.Duration, exercises int, cacheHit bool)
	ObserveCacheEviction()
}

// Detector runs exercise detection with optional memoization.
// Caching never changes the output, only whether it is recomputed.
// A Detector is safe for concurrent use.
type Detector struct {
	opts     Options
	cache    *ExerciseCache
	recorder Recorder
}

// NewDetector creates a Detector. Zero-valued numeric options fall back to defaults.
func NewDetector(opts Options) *Detector {
	def := DefaultOptions()
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = def.MaxCacheSize
	}
	if opts.MaxTitleLength <= 0 {
		opts.MaxTitleLength = def.MaxTitleLength
	}
	if opts.MaxCachedExercises <= 0 {
		opts.MaxCachedExercises = def.MaxCachedExercises
	}
	return &Detector{
		opts:  opts,
		cache: NewExerciseCache(opts.MaxCacheSize),
	}
}

// SetRecorder attaches a measurement sink; nil detaches it.
func (d *Detector) SetRecorder(r Recorder) {
	d.recorder = r
}

// Options returns the effective options.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect returns the exercises of text, from the cache when possible.
func (d *Detector) Detect(text string) []types.Exercise {
	start := time.Now()

	if !d.opts.EnableCache {
		exercises := collect(d.All(text))
		d.observe(start, len(exercises), false)
		return exercises
	}

	key := HashContent(text)
	if cached, ok := d.cache.Get(key); ok {
		logger.Debug("exercise cache hit", logger.String("hash", key[:12]), logger.Int("exercises", len(cached)))
		d.observe(start, len(cached), true)
		return cached
	}

	exercises := collect(d.All(text))
	if len(exercises) <= d.opts.MaxCachedExercises {
		if d.cache.Put(key, exercises) {
			logger.Debug("exercise cache evicted oldest entry", logger.Int("maxSize", d.cache.MaxSize()))
			if d.recorder != nil {
				d.recorder.ObserveCacheEviction()
			}
		}
	} else {
		logger.Debug("result too large to cache", logger.Int("exercises", len(exercises)))
	}

	d.observe(start, len(exercises), false)
	return exercises
}

// All returns a lazy, uncached sequence over the exercises of text.
func (d *Detector) All(text string) iter.Seq[types.Exercise] {
	return allWithTitleLength(text, d.opts.MaxTitleLength)
}

// CacheStats returns the cache counters.
func (d *Detector) CacheStats() CacheStats {
	return d.cache.Stats()
}

// Reset clears the cache.
func (d *Detector) Reset() {
	d.cache.Clear()
	logger.Debug("exercise cache cleared")
}

func (d *Detector) observe(start time.Time, n int, hit bool) {
	if d.recorder != nil {
		d.recorder.ObserveDetection(time.Since(start), n, hit)
	}
}
