package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/upd/internal/domain/entities"
	domainRepos "github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/cache"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/cargo"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/crates"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/discovery"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/gomod"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/goproxy"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/lockfile"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/metrics"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/npm"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/osv"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/packagejson"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/prompt"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/pypi"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/pyproject"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/requirements"
)

// NewDefaultRegistryCatalog registers the public index of every ecosystem.
func NewDefaultRegistryCatalog() *RegistryCatalog {
	catalog := NewRegistryCatalog()
	catalog.Register(entities.LangPython, "pypi", pypi.NewFromSettings)
	catalog.Register(entities.LangNode, "npm", func(s entities.RegistrySettings) domainRepos.RegistryRepository {
		return npm.NewFromSettings(s)
	})
	catalog.Register(entities.LangRust, "crates", func(s entities.RegistrySettings) domainRepos.RegistryRepository {
		return crates.NewFromSettings(s)
	})
	catalog.Register(entities.LangGo, "goproxy", func(s entities.RegistrySettings) domainRepos.RegistryRepository {
		return goproxy.NewFromSettings(s)
	})
	return catalog
}

// NewDefaultUpdaterRegistry registers the five manifest editors.
func NewDefaultUpdaterRegistry() *UpdaterRegistry {
	reg := NewUpdaterRegistry()
	reg.Register(requirements.NewRequirementsUpdaterRepository())
	reg.Register(pyproject.NewPyProjectUpdaterRepository())
	reg.Register(packagejson.NewPackageJSONUpdaterRepository())
	reg.Register(cargo.NewCargoUpdaterRepository())
	reg.Register(gomod.NewGoModUpdaterRepository())
	return reg
}

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	providers := []any{
		NewDefaultRegistryCatalog,
		NewDefaultUpdaterRegistry,
		cache.NewDefaultVersionCache,
		discovery.NewFileDiscoveryRepository,
		osv.NewOSVVulnerabilityRepository,
		lockfile.NewLockfileRepository,
		prompt.NewTerminalPromptRepository,
		metrics.NewPrometheusMetricsRepository,
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []any{
		func(impl *cache.VersionCache) domainRepos.VersionCacheRepository { return impl },
		func(impl *discovery.FileDiscoveryRepository) domainRepos.FileDiscoveryRepository { return impl },
		func(impl *osv.OSVVulnerabilityRepository) domainRepos.VulnerabilityRepository { return impl },
		func(impl *lockfile.LockfileRepository) domainRepos.LockfileRepository { return impl },
		func(impl *prompt.TerminalPromptRepository) domainRepos.PromptRepository { return impl },
		func(impl *metrics.PrometheusMetricsRepository) domainRepos.MetricsRepository { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
