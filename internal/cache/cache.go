// File: internal/cache/cache.go

// Package cache holds recent analysis results keyed by a content
// fingerprint. Entries age out after a fixed TTL; eviction is lazy, an
// expired entry is dropped when a lookup touches it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

// TTL is how long a cached analysis stays servable.
const TTL = 24 * time.Hour

// Fingerprint derives the cache key for a page. The content hint
// participates so the same URL with changed content misses; two pages with
// an empty hint and the same URL intentionally share a key.
func Fingerprint(url, contentHint string) string {
	sum := sha256.Sum256([]byte(url + ":" + contentHint))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	result   *schemas.AnalysisResult
	storedAt time.Time
}

// Cache is an in-memory TTL cache of analysis results.
type Cache struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]entry

	// now is swapped in tests to steer expiry.
	now func() time.Time
}

var _ schemas.ResultCache = (*Cache)(nil)

// New creates an empty cache.
func New(logger *zap.Logger) *Cache {
	return &Cache{
		logger:  logger.Named("cache"),
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached result for the target, if present and fresh.
// Touching an expired entry evicts it.
func (c *Cache) Get(target schemas.PageTarget, contentHint string) (*schemas.AnalysisResult, bool) {
	fingerprint := Fingerprint(target.URL, contentHint)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > TTL {
		delete(c.entries, fingerprint)
		c.logger.Debug("Expired cache entry evicted.", zap.String("fingerprint", fingerprint))
		return nil, false
	}
	return e.result, true
}

// Set stores a result for the target, replacing any previous entry with the
// same fingerprint and restarting its TTL.
func (c *Cache) Set(target schemas.PageTarget, contentHint string, result *schemas.AnalysisResult) {
	fingerprint := Fingerprint(target.URL, contentHint)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = entry{result: result, storedAt: c.now()}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.logger.Info("Analysis cache cleared.")
}

// Size reports the number of stored entries. Entries past their TTL that no
// lookup has touched yet still count; only reads evict.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
