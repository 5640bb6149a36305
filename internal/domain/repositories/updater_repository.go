package repositories

import (
	"context"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// UpdaterRepository edits one manifest format in place. Implementations rewrite
// only version tokens and leave every other byte of the file untouched.
type UpdaterRepository interface {
	// Name returns the editor identifier (e.g. "requirements", "gomod").
	Name() string

	// Handles reports whether the editor owns the given manifest format.
	Handles(fileType entities.FileType) bool

	// Update resolves every declaration of the file against the registry and
	// rewrites the outdated ones unless opts.DryRun is set.
	Update(
		ctx context.Context,
		path string,
		registry RegistryRepository,
		opts entities.UpdateOptions,
	) (entities.UpdateResult, error)

	// ParseDependencies lists the declarations of the file without any network access.
	ParseDependencies(path string) ([]entities.ParsedDependency, error)

	// ApplyRewrites performs the given edits in a single read-modify-write cycle
	// and returns how many were applied.
	ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error)
}
