package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
)

const (
	// DefaultTTL is how long a resolved version is trusted.
	DefaultTTL    = 24 * time.Hour
	cacheFileName = "versions.json"
	cacheDirEnv   = "UPD_CACHE_DIR"
)

type entry struct {
	Version   string `json:"version"`
	FetchedAt int64  `json:"fetched_at"`
}

// VersionCache is a JSON file of resolved versions, one map per registry.
// It is loaded once and saved once per run.
type VersionCache struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	now     func() time.Time
	entries map[string]map[string]entry
	dirty   bool
}

var _ repositories.VersionCacheRepository = (*VersionCache)(nil)

// DefaultPath returns UPD_CACHE_DIR/versions.json, falling back to the user
// cache directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv(cacheDirEnv); dir != "" {
		return filepath.Join(dir, cacheFileName), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("could not determine cache directory: %w", err)
	}
	return filepath.Join(dir, "upd", cacheFileName), nil
}

// NewVersionCache loads the cache stored at path. A missing, unreadable or
// corrupt file yields an empty cache.
func NewVersionCache(path string, ttl time.Duration) *VersionCache {
	return newVersionCache(path, ttl, time.Now)
}

func newVersionCache(path string, ttl time.Duration, now func() time.Time) *VersionCache {
	c := &VersionCache{
		path:    path,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]map[string]entry),
	}
	c.load()
	return c
}

// NewDefaultVersionCache opens the cache at DefaultPath with DefaultTTL.
func NewDefaultVersionCache() *VersionCache {
	path, err := DefaultPath()
	if err != nil {
		logger.Debugf("[cache] %v", err)
	}
	return NewVersionCache(path, DefaultTTL)
}

func (it *VersionCache) load() {
	if it.path == "" {
		return
	}
	data, err := os.ReadFile(it.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debugf("[cache] Failed to read %s: %v", it.path, err)
		}
		return
	}
	var stored map[string]map[string]entry
	if err = json.Unmarshal(data, &stored); err != nil {
		logger.Debugf("[cache] Ignoring corrupt cache %s: %v", it.path, err)
		return
	}
	for registry, entries := range stored {
		if entries != nil {
			it.entries[registry] = entries
		}
	}
}

func (it *VersionCache) expired(e entry) bool {
	return it.now().Sub(time.Unix(e.FetchedAt, 0)) > it.ttl
}

func (it *VersionCache) TTL() time.Duration { return it.ttl }

func (it *VersionCache) Get(registry, key string) (string, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	e, ok := it.entries[registry][key]
	if !ok || it.expired(e) {
		return "", false
	}
	return e.Version, true
}

func (it *VersionCache) Set(registry, key, version string) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.entries[registry] == nil {
		it.entries[registry] = make(map[string]entry)
	}
	it.entries[registry][key] = entry{Version: version, FetchedAt: it.now().Unix()}
	it.dirty = true
}

// Prune drops expired entries.
func (it *VersionCache) Prune() {
	it.mu.Lock()
	defer it.mu.Unlock()
	for registry, entries := range it.entries {
		for key, e := range entries {
			if it.expired(e) {
				delete(entries, key)
				it.dirty = true
			}
		}
		if len(entries) == 0 {
			delete(it.entries, registry)
		}
	}
}

// Save writes the cache atomically when it changed since loading.
func (it *VersionCache) Save() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if !it.dirty || it.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(it.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(it.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err = fileio.WriteAtomic(it.path, data, 0o644); err != nil {
		return err
	}
	it.dirty = false
	return nil
}

// Clean removes the cache file and forgets every entry.
func (it *VersionCache) Clean() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.entries = make(map[string]map[string]entry)
	it.dirty = false
	if it.path == "" {
		return nil
	}
	if err := os.Remove(it.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache %s: %w", it.path, err)
	}
	return nil
}
