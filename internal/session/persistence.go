package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	rankerrors "github.com/aman-health/practitioner-rank/internal/errors"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
)

const maxVariantNameLength = 64

var validVariantNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateVariantName enforces the same naming discipline the teacher
// applies to session names: non-empty, bounded length, safe filename
// characters only, since the variant is interpolated directly into the
// cache's file name.
func ValidateVariantName(name string) error {
	if name == "" {
		return rankerrors.InputError("variant name cannot be empty", nil)
	}
	if len(name) > maxVariantNameLength {
		return rankerrors.InputError(fmt.Sprintf("variant name exceeds %d characters", maxVariantNameLength), nil)
	}
	if !validVariantNamePattern.MatchString(name) {
		return rankerrors.InputError("variant name must contain only letters, digits, underscore, and hyphen", nil)
	}
	return nil
}

// CachePath returns the benchmark session-context cache file path for a
// given config variant, under dir.
func CachePath(dir, variant string) string {
	return filepath.Join(dir, fmt.Sprintf("benchmark-session-context-cache-%s.json", variant))
}

// BenchmarkCache is the on-disk companion to ContextCache: a shared JSON
// map of cache key to SessionContext, written by concurrent benchmark
// workers and protected by a file lock so concurrent writers don't
// interleave partial writes.
type BenchmarkCache struct {
	path    string
	entries map[string]queryunderstanding.SessionContext
}

// LoadBenchmarkCache reads the cache at path, returning an empty cache if
// the file does not yet exist.
func LoadBenchmarkCache(path string) (*BenchmarkCache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &BenchmarkCache{path: path, entries: make(map[string]queryunderstanding.SessionContext)}, nil
	}
	if err != nil {
		return nil, rankerrors.InternalError("failed to read benchmark cache", err)
	}

	entries := make(map[string]queryunderstanding.SessionContext)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, rankerrors.InternalError("failed to parse benchmark cache", err)
		}
	}
	return &BenchmarkCache{path: path, entries: entries}, nil
}

// Get returns the cached SessionContext for key, if present.
func (c *BenchmarkCache) Get(key string) (queryunderstanding.SessionContext, bool) {
	ctx, ok := c.entries[key]
	return ctx, ok
}

// Put stores ctx under key in memory. Callers must call Save to persist.
func (c *BenchmarkCache) Put(key string, ctx queryunderstanding.SessionContext) {
	c.entries[key] = ctx
}

// Len reports the number of cached entries.
func (c *BenchmarkCache) Len() int {
	return len(c.entries)
}

// Save merges this cache's in-memory entries with whatever is currently
// on disk (so a concurrent writer's entries aren't clobbered), then
// writes atomically: a temp file in the same directory followed by
// os.Rename, guarded by a cross-process file lock for the
// read-merge-write critical section.
func (c *BenchmarkCache) Save() error {
	lock := newFileLock(c.path)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	onDisk, err := LoadBenchmarkCache(c.path)
	if err != nil {
		return err
	}
	for k, v := range c.entries {
		onDisk.entries[k] = v
	}

	data, err := json.MarshalIndent(onDisk.entries, "", "  ")
	if err != nil {
		return rankerrors.InternalError("failed to marshal benchmark cache", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return rankerrors.InternalError("failed to create benchmark cache directory", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return rankerrors.InternalError("failed to write benchmark cache temp file", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return rankerrors.InternalError("failed to commit benchmark cache", err)
	}

	c.entries = onDisk.entries
	return nil
}
