package repositories

import "time"

// VersionCacheRepository stores resolved versions per registry and composite key.
type VersionCacheRepository interface {
	Get(registry, key string) (string, bool)
	Set(registry, key, version string)
	Prune()
	Save() error
	Clean() error
	TTL() time.Duration
}
