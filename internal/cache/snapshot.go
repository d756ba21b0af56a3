// File: internal/cache/snapshot.go
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshotEntry is the on-disk form of one cache entry.
type snapshotEntry struct {
	Result   *schemas.AnalysisResult `json:"result"`
	StoredAt time.Time               `json:"stored_at"`
}

// LoadSnapshot merges a persisted snapshot into the cache. Entries already
// past their TTL are dropped on the way in. A missing file is not an error.
func (c *Cache) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache snapshot %s: %w", path, err)
	}

	var snapshot map[string]snapshotEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse cache snapshot %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	loaded := 0
	for fingerprint, e := range snapshot {
		if c.now().Sub(e.StoredAt) > TTL || e.Result == nil {
			continue
		}
		c.entries[fingerprint] = entry{result: e.Result, storedAt: e.StoredAt}
		loaded++
	}
	c.logger.Debug("Cache snapshot loaded.", zap.String("path", path), zap.Int("entries", loaded))
	return nil
}

// SaveSnapshot persists the current entries atomically (write-then-rename).
func (c *Cache) SaveSnapshot(path string) error {
	c.mu.Lock()
	snapshot := make(map[string]snapshotEntry, len(c.entries))
	for fingerprint, e := range c.entries {
		snapshot[fingerprint] = snapshotEntry{Result: e.result, StoredAt: e.storedAt}
	}
	c.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace cache snapshot %s: %w", path, err)
	}
	return nil
}
