package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	for _, constructor := range []any{
		NewUpdateController,
		NewAlignController,
		NewAuditController,
		NewCleanCacheController,
		NewVersionController,
		NewControllers,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// NewControllers aggregates the subcommand controllers for the AppInternal.
func NewControllers(
	updateController *UpdateController,
	alignController *AlignController,
	auditController *AuditController,
	cleanCacheController *CleanCacheController,
	versionController *VersionController,
) *[]entities.Controller {
	return &[]entities.Controller{
		updateController,
		alignController,
		auditController,
		cleanCacheController,
		versionController,
	}
}
