package repositories

import "context"

// RegistryRepository resolves published versions from a package index.
type RegistryRepository interface {
	// Name identifies the index ("pypi", "npm", "crates.io", "go-proxy").
	Name() string
	// GetLatestVersion returns the highest stable version.
	GetLatestVersion(ctx context.Context, pkg string) (string, error)
	// GetLatestVersionIncludingPrereleases returns the highest version, stable or not.
	GetLatestVersionIncludingPrereleases(ctx context.Context, pkg string) (string, error)
	// GetLatestVersionMatching returns the highest stable version satisfying the constraint.
	GetLatestVersionMatching(ctx context.Context, pkg, constraint string) (string, error)
}
