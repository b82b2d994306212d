// Package cache stores repository contributor lists between runs.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/log"
	"github.com/spiffcs/contribs/internal/model"
)

// Version is incremented whenever the entry layout changes.
// Entries written with another version are treated as misses.
const Version = 1

// Entry is one cached contributor list.
type Entry struct {
	Repo         string              `json:"repo"`
	Contributors []model.Contributor `json:"contributors"`
	CachedAt     time.Time           `json:"cached_at"`
	Version      int                 `json:"version"`
}

// Cacher defines the interface for caching operations.
// This interface enables mocking the cache in unit tests.
type Cacher interface {
	Get(repo string) ([]model.Contributor, bool)
	Set(repo string, contributors []model.Contributor) error
	Clear() error
	Stats() (total int, validCount int, err error)
}

// Ensure Cache implements Cacher interface.
var _ Cacher = (*Cache)(nil)

// Cache stores contributor lists as one JSON file per repository
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a cache in the user cache directory
func NewCache() (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewCacheAt(filepath.Join(cacheDir, "contribs", "contributors"))
}

// NewCacheAt creates a cache rooted at dir
func NewCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		dir: dir,
		ttl: constants.ContributorListCacheTTL,
		now: time.Now,
	}, nil
}

// Dir returns the directory entries are written to
func (c *Cache) Dir() string {
	return c.dir
}

// fileName generates a file name for a repository
func fileName(repo string) string {
	// Replace slashes with underscores to avoid path issues while preserving uniqueness
	return strings.ReplaceAll(strings.ToLower(repo), "/", "_") + ".json"
}

// Get retrieves the cached contributor list for a repository.
func (c *Cache) Get(repo string) ([]model.Contributor, bool) {
	if repo == "" {
		return nil, false
	}

	name := fileName(repo)
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Debug("cache entry unreadable", "key", name, "error", err)
		return nil, false
	}

	// Invalidate if cache version doesn't match (format/schema changed)
	if entry.Version != Version {
		log.Debug("cache version mismatch", "cached", entry.Version, "current", Version, "key", name)
		return nil, false
	}

	if c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, false
	}

	return entry.Contributors, true
}

// Set caches the contributor list for a repository.
func (c *Cache) Set(repo string, contributors []model.Contributor) error {
	if repo == "" {
		return nil
	}

	entry := Entry{
		Repo:         repo,
		Contributors: contributors,
		CachedAt:     c.now(),
		Version:      Version,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.dir, fileName(repo)), data, 0600)
}

// Clear removes all cached entries. Anything that is not a cache file is left alone.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// Stats returns the number of cached lists and how many are still fresh
func (c *Cache) Stats() (total int, validCount int, err error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, err
	}

	now := c.now()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		total++

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if entry.Version == Version && now.Sub(entry.CachedAt) <= c.ttl {
			validCount++
		}
	}

	return total, validCount, nil
}
