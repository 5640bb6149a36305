package pypi

import (
	"context"
	"errors"
	"fmt"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// MultiPyPIRegistryRepository queries several indexes in order and returns the
// first successful answer.
type MultiPyPIRegistryRepository struct {
	registries []repositories.RegistryRepository
}

var _ repositories.RegistryRepository = (*MultiPyPIRegistryRepository)(nil)

// NewMultiPyPIRegistryRepository wraps the given indexes, primary first.
func NewMultiPyPIRegistryRepository(registries ...repositories.RegistryRepository) *MultiPyPIRegistryRepository {
	return &MultiPyPIRegistryRepository{registries: registries}
}

// FromPrimaryAndExtras builds a registry for a primary index plus extra index URLs.
// With no extras the primary index is returned unwrapped.
func FromPrimaryAndExtras(primary string, extras []string) repositories.RegistryRepository {
	if len(extras) == 0 {
		return FromURL(primary)
	}
	registries := []repositories.RegistryRepository{FromURL(primary)}
	for _, url := range extras {
		registries = append(registries, FromURL(url))
	}
	return NewMultiPyPIRegistryRepository(registries...)
}

// NewFromSettings builds the default Python registry from configuration and environment.
func NewFromSettings(settings entities.RegistrySettings) repositories.RegistryRepository {
	indexURL := DetectIndexURL(settings)
	extras := DetectExtraIndexURLs(settings)

	primary := FromURL(indexURL)
	if settings.Token != "" || settings.Username != "" {
		primary = NewPyPIRegistryRepository(indexURL, credentialsOf(settings))
	}
	if len(extras) == 0 {
		return primary
	}
	registries := []repositories.RegistryRepository{primary}
	for _, url := range extras {
		registries = append(registries, FromURL(url))
	}
	return NewMultiPyPIRegistryRepository(registries...)
}

func (it *MultiPyPIRegistryRepository) Name() string { return registryName }

func (it *MultiPyPIRegistryRepository) GetLatestVersion(ctx context.Context, pkg string) (string, error) {
	return it.firstMatch(func(r repositories.RegistryRepository) (string, error) {
		return r.GetLatestVersion(ctx, pkg)
	})
}

func (it *MultiPyPIRegistryRepository) GetLatestVersionIncludingPrereleases(
	ctx context.Context,
	pkg string,
) (string, error) {
	return it.firstMatch(func(r repositories.RegistryRepository) (string, error) {
		return r.GetLatestVersionIncludingPrereleases(ctx, pkg)
	})
}

func (it *MultiPyPIRegistryRepository) GetLatestVersionMatching(
	ctx context.Context,
	pkg, constraint string,
) (string, error) {
	return it.firstMatch(func(r repositories.RegistryRepository) (string, error) {
		return r.GetLatestVersionMatching(ctx, pkg, constraint)
	})
}

func (it *MultiPyPIRegistryRepository) firstMatch(
	query func(repositories.RegistryRepository) (string, error),
) (string, error) {
	if len(it.registries) == 0 {
		return "", errors.New("no registries configured")
	}
	var lastErr error
	for _, registry := range it.registries {
		version, err := query(registry)
		if err == nil {
			return version, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all %d indexes failed: %w", len(it.registries), lastErr)
}
