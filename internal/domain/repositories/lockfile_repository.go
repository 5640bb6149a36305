package repositories

import (
	"context"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// LockfileRepository finds and regenerates lock files next to manifests.
type LockfileRepository interface {
	Detect(manifestPath string) []entities.LockfileType
	Regenerate(ctx context.Context, manifestPath string, lockfile entities.LockfileType) error
}
