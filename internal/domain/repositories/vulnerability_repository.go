package repositories

import (
	"context"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// VulnerabilityRepository checks package versions against an advisory database.
type VulnerabilityRepository interface {
	CheckPackages(ctx context.Context, packages []entities.AuditPackage) (entities.AuditResult, error)
}
