package cache

import (
	"context"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// CachedRegistryRepository answers lookups from a VersionCache and delegates
// misses to the wrapped registry. Only successful lookups are stored.
type CachedRegistryRepository struct {
	inner   repositories.RegistryRepository
	cache   repositories.VersionCacheRepository
	metrics repositories.MetricsRepository
	enabled bool
}

var _ repositories.RegistryRepository = (*CachedRegistryRepository)(nil)

// NewCachedRegistryRepository wraps inner. With enabled false every lookup
// goes to inner and nothing is stored. metrics may be nil.
func NewCachedRegistryRepository(
	inner repositories.RegistryRepository,
	cache repositories.VersionCacheRepository,
	metrics repositories.MetricsRepository,
	enabled bool,
) *CachedRegistryRepository {
	return &CachedRegistryRepository{inner: inner, cache: cache, metrics: metrics, enabled: enabled}
}

// Key builds the composite cache key of a lookup.
func Key(pkg string, kind entities.LookupKind, constraint string) string {
	switch kind {
	case entities.LookupPrerelease:
		return pkg + ":prerelease"
	case entities.LookupMatching:
		return pkg + ":match:" + constraint
	case entities.LookupLatest:
		return pkg
	}
	return pkg
}

func (it *CachedRegistryRepository) Name() string { return it.inner.Name() }

func (it *CachedRegistryRepository) lookup(
	pkg string,
	kind entities.LookupKind,
	constraint string,
	fetch func() (string, error),
) (string, error) {
	key := Key(pkg, kind, constraint)
	if it.enabled && it.cache != nil {
		if version, ok := it.cache.Get(it.inner.Name(), key); ok {
			it.observe(kind, true, nil)
			return version, nil
		}
	}
	version, err := fetch()
	it.observe(kind, false, err)
	if err != nil {
		return "", err
	}
	if it.enabled && it.cache != nil {
		it.cache.Set(it.inner.Name(), key, version)
	}
	return version, nil
}

func (it *CachedRegistryRepository) observe(kind entities.LookupKind, cached bool, err error) {
	if it.metrics != nil {
		it.metrics.ObserveLookup(it.inner.Name(), kind.String(), cached, err)
	}
}

func (it *CachedRegistryRepository) GetLatestVersion(ctx context.Context, pkg string) (string, error) {
	return it.lookup(pkg, entities.LookupLatest, "", func() (string, error) {
		return it.inner.GetLatestVersion(ctx, pkg)
	})
}

func (it *CachedRegistryRepository) GetLatestVersionIncludingPrereleases(
	ctx context.Context,
	pkg string,
) (string, error) {
	return it.lookup(pkg, entities.LookupPrerelease, "", func() (string, error) {
		return it.inner.GetLatestVersionIncludingPrereleases(ctx, pkg)
	})
}

func (it *CachedRegistryRepository) GetLatestVersionMatching(
	ctx context.Context,
	pkg, constraint string,
) (string, error) {
	return it.lookup(pkg, entities.LookupMatching, constraint, func() (string, error) {
		return it.inner.GetLatestVersionMatching(ctx, pkg, constraint)
	})
}
