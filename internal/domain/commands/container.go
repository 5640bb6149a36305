package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	for _, constructor := range []any{
		NewUpdateCommand,
		NewAlignCommand,
		NewAuditCommand,
		NewCleanCacheCommand,
		NewVersionCommand,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	for _, binding := range []any{
		func(impl *UpdateCommand) Update { return impl },
		func(impl *AlignCommand) Align { return impl },
		func(impl *AuditCommand) Audit { return impl },
		func(impl *CleanCacheCommand) CleanCache { return impl },
		func(impl *VersionCommand) Version { return impl },
	} {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
