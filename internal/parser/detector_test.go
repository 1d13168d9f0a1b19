package parser

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu        sync.Mutex
	calls     int
	hits      int
	evictions int
}

func (r *countingRecorder) ObserveDetection(_ time.Duration, _ int, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if hit {
		r.hits++
	}
}

func (r *countingRecorder) ObserveCacheEviction() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictions++
}

func randomDocument(r *rand.Rand) string {
	var sb strings.Builder
	for i := 0; i < r.Intn(6); i++ {
		sb.WriteString(randomLatexFragment(r))
		switch r.Intn(4) {
		case 0:
			sb.WriteString(exercise("\\begin{enonce}" + randomLatexFragment(r) + "\\end{enonce}"))
		case 1:
			sb.WriteString(exercise(randomLatexFragment(r) + "\\begin{correction}" + randomLatexFragment(r) + "\\end{correction}"))
		case 2:
			sb.WriteString(ExerciseBeginTag + randomLatexFragment(r))
		default:
			sb.WriteString(ExerciseBeginTag + exercise("nested") + ExerciseEndTag)
		}
	}
	return sb.String()
}

func TestDetector_CacheTransparency(t *testing.T) {
	cached := NewDetector(Options{EnableCache: true, MaxCacheSize: 3})
	uncached := NewDetector(Options{EnableCache: false})

	f := func(seed int64) bool {
		doc := randomDocument(rand.New(rand.NewSource(seed)))
		want := uncached.Detect(doc)
		first := cached.Detect(doc)
		second := cached.Detect(doc)
		return assert.ObjectsAreEqual(want, first) &&
			assert.ObjectsAreEqual(want, second) &&
			assert.ObjectsAreEqual(want, Detect(doc))
	}

	if err := quick.Check(f, quickConfig()); err != nil {
		t.Error(err)
	}
	assert.Zero(t, uncached.CacheStats().Size)
}

func TestDetector_HitReturnsSameResult(t *testing.T) {
	d := NewDetector(DefaultOptions())
	doc := exercise("\\begin{enonce}Q\\end{enonce}") + exercise("two")

	first := d.Detect(doc)
	second := d.Detect(doc)
	assert.Equal(t, first, second)

	stats := d.CacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestDetector_FIFOEviction(t *testing.T) {
	d := NewDetector(Options{EnableCache: true, MaxCacheSize: 2})
	rec := &countingRecorder{}
	d.SetRecorder(rec)

	docA, docB, docC := exercise("A"), exercise("B"), exercise("C")

	d.Detect(docA)
	d.Detect(docB)
	d.Detect(docC) // evicts A
	stats := d.CacheStats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 1, stats.Evictions)
	assert.Equal(t, 3, stats.Misses)

	d.Detect(docB) // hit, does not refresh B's position
	assert.Equal(t, 1, d.CacheStats().Hits)

	d.Detect(docA) // miss, evicts B (oldest inserted), not C
	d.Detect(docC)
	assert.Equal(t, 2, d.CacheStats().Hits, "C should still be cached")

	d.Detect(docB)
	stats = d.CacheStats()
	assert.Equal(t, 2, stats.Hits, "B should have been evicted")
	assert.Equal(t, 5, stats.Misses)

	assert.Equal(t, stats.Evictions, rec.evictions)
	assert.Equal(t, 7, rec.calls)
	assert.Equal(t, 2, rec.hits)
}

func TestDetector_LargeResultsNotCached(t *testing.T) {
	d := NewDetector(Options{EnableCache: true, MaxCacheSize: 10, MaxCachedExercises: 2})

	small := exercise("1") + exercise("2")
	large := small + exercise("3")

	assert.Len(t, d.Detect(small), 2)
	assert.Len(t, d.Detect(large), 3)
	assert.Equal(t, 1, d.CacheStats().Size)
	assert.Len(t, d.Detect(large), 3)
	assert.Equal(t, 0, d.CacheStats().Hits)
}

func TestDetector_ReturnedSliceIsIsolated(t *testing.T) {
	d := NewDetector(DefaultOptions())
	doc := exercise("original")

	first := d.Detect(doc)
	first[0].Title = "mutated"
	first[0].Number = 99

	second := d.Detect(doc)
	assert.Equal(t, "Exercice 1", second[0].Title)
	assert.Equal(t, 1, second[0].Number)
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(DefaultOptions())
	d.Detect(exercise("x"))
	require.Equal(t, 1, d.CacheStats().Size)

	d.Reset()
	assert.Equal(t, CacheStats{}, d.CacheStats())
}

func TestDetector_TitleLengthOption(t *testing.T) {
	d := NewDetector(Options{MaxTitleLength: 5})
	exercises := d.Detect(exercise("\\begin{enonce}abcdefghij\\end{enonce}"))
	require.Len(t, exercises, 1)
	assert.Equal(t, "abcde...", exercises[0].Title)
}

func TestDetector_DefaultsApplied(t *testing.T) {
	opts := NewDetector(Options{EnableCache: true}).Options()
	assert.Equal(t, DefaultMaxCacheSize, opts.MaxCacheSize)
	assert.Equal(t, DefaultMaxTitleLength, opts.MaxTitleLength)
	assert.Equal(t, DefaultMaxCachedExercises, opts.MaxCachedExercises)
}

func TestDetector_ConcurrentUse(t *testing.T) {
	d := NewDetector(Options{EnableCache: true, MaxCacheSize: 4})
	docs := make([]string, 8)
	for i := range docs {
		docs[i] = strings.Repeat(exercise(fmt.Sprintf("doc %d", i)), i+1)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				idx := (g + i) % len(docs)
				if got := d.Detect(docs[idx]); len(got) != idx+1 {
					t.Errorf("doc %d: expected %d exercises, got %d", idx, idx+1, len(got))
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, d.CacheStats().Size, 4)
}

func TestExerciseCache_Basics(t *testing.T) {
	c := NewExerciseCache(0)
	assert.Equal(t, DefaultMaxCacheSize, c.MaxSize())

	key := HashContent("doc")
	assert.Len(t, key, 64)
	assert.Equal(t, key, HashContent("doc"))
	assert.NotEqual(t, key, HashContent("doc "))

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.False(t, c.Contains(key))

	exercises := Detect(exercise("x"))
	assert.False(t, c.Put(key, exercises))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, exercises, got)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}
