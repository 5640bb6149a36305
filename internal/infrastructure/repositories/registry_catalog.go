package repositories

import (
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	domainRepos "github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/cache"
)

// RegistryFactory builds a package index client from the user's registry overrides.
type RegistryFactory func(settings entities.RegistrySettings) domainRepos.RegistryRepository

type catalogEntry struct {
	settingsKey string
	factory     RegistryFactory
}

// RegistryCatalog maps every ecosystem to the factory of its package index.
type RegistryCatalog struct {
	registries map[entities.Lang]catalogEntry
}

// NewRegistryCatalog creates an empty catalog.
func NewRegistryCatalog() *RegistryCatalog {
	return &RegistryCatalog{
		registries: make(map[entities.Lang]catalogEntry),
	}
}

// Register adds a factory for lang. settingsKey names the [registries.<key>]
// section of the configuration file that feeds the factory.
func (r *RegistryCatalog) Register(lang entities.Lang, settingsKey string, factory RegistryFactory) {
	r.registries[lang] = catalogEntry{settingsKey: settingsKey, factory: factory}
}

// Get builds the registry for lang from the given settings.
func (r *RegistryCatalog) Get(lang entities.Lang, settings *entities.Settings) (domainRepos.RegistryRepository, error) {
	entry, ok := r.registries[lang]
	if !ok || entry.factory == nil {
		return nil, fmt.Errorf("no registry registered for %q", lang)
	}
	return entry.factory(settings.Registry(entry.settingsKey)), nil
}

// Open builds one registry per registered ecosystem, each wrapped in the
// version cache decorator.
func (r *RegistryCatalog) Open(
	settings *entities.Settings,
	versionCache domainRepos.VersionCacheRepository,
	metrics domainRepos.MetricsRepository,
	cacheEnabled bool,
) (map[entities.Lang]domainRepos.RegistryRepository, error) {
	result := make(map[entities.Lang]domainRepos.RegistryRepository, len(r.registries))
	for _, lang := range r.Langs() {
		registry, err := r.Get(lang, settings)
		if err != nil {
			return nil, err
		}
		if cacheEnabled && versionCache != nil {
			logger.Debugf("[registries] %s: %s with a %s version cache", lang, registry.Name(), versionCache.TTL())
		} else {
			logger.Debugf("[registries] %s: %s without the version cache", lang, registry.Name())
		}
		result[lang] = cache.NewCachedRegistryRepository(registry, versionCache, metrics, cacheEnabled)
	}
	return result, nil
}

// Langs returns the registered ecosystems in a stable order.
func (r *RegistryCatalog) Langs() []entities.Lang {
	langs := make([]entities.Lang, 0, len(r.registries))
	for lang := range r.registries {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
