// Package session caches structured query understanding output and
// persists the benchmark session-context cache to disk. The in-memory cache
// mirrors the teacher's HybridClassifier result cache (an LRU keyed by a
// normalized cache key); the on-disk cache adapts the teacher's
// session-directory persistence and file-locking conventions to this
// engine's benchmark workflow.
package session

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
)

// DefaultCacheSize mirrors the teacher classifier's default cache size,
// scaled down for the smaller per-process session-context working set.
const DefaultCacheSize = 2000

// ContextCache is an LRU cache of SessionContext keyed by normalized
// query+filters, avoiding redundant LLM calls for repeat queries within a
// process lifetime.
type ContextCache struct {
	cache *lru.Cache[string, queryunderstanding.SessionContext]
}

// NewContextCache builds a cache with the given capacity, falling back to
// DefaultCacheSize if size <= 0.
func NewContextCache(size int) *ContextCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, queryunderstanding.SessionContext](size)
	return &ContextCache{cache: cache}
}

// Get returns the cached SessionContext for key, if present.
func (c *ContextCache) Get(key string) (queryunderstanding.SessionContext, bool) {
	return c.cache.Get(key)
}

// Put stores ctx under key, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *ContextCache) Put(key string, ctx queryunderstanding.SessionContext) {
	c.cache.Add(key, ctx)
}

// Len returns the number of entries currently cached.
func (c *ContextCache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *ContextCache) Purge() {
	c.cache.Purge()
}

var cacheKeyNonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

// Key builds a cache key from a query string and an ordered set of filter
// values, normalizing each the same way internal/filters normalizes
// manual-specialty queries so cache hits are case/punctuation
// insensitive.
func Key(query string, filters ...string) string {
	parts := make([]string, 0, len(filters)+1)
	parts = append(parts, normalize(query))
	for _, f := range filters {
		parts = append(parts, normalize(f))
	}
	return strings.Join(parts, "|")
}

func normalize(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSpace(cacheKeyNonWordRe.ReplaceAllString(lower, " "))
}
