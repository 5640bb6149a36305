//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"io"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
)

// StubUpdateCommand is a stub implementation of commands.Update.
type StubUpdateCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.UpdateOptions
}

var _ commands.Update = (*StubUpdateCommand)(nil)

func (s *StubUpdateCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.UpdateOptions,
) error {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteErr
}

// StubAlignCommand is a stub implementation of commands.Align.
type StubAlignCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.AlignOptions
}

var _ commands.Align = (*StubAlignCommand)(nil)

func (s *StubAlignCommand) Execute(opts commands.AlignOptions) error {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.ExecuteErr
}

// StubAuditCommand is a stub implementation of commands.Audit.
type StubAuditCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.AuditOptions
}

var _ commands.Audit = (*StubAuditCommand)(nil)

func (s *StubAuditCommand) Execute(_ context.Context, opts commands.AuditOptions) error {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.ExecuteErr
}

// StubCleanCacheCommand is a stub implementation of commands.CleanCache.
type StubCleanCacheCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
}

var _ commands.CleanCache = (*StubCleanCacheCommand)(nil)

func (s *StubCleanCacheCommand) Execute(_ io.Writer) error {
	s.ExecuteCallCount++
	return s.ExecuteErr
}
