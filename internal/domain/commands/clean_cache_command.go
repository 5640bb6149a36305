package commands

import (
	"fmt"
	"io"

	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// CleanCache is the interface for the clean-cache command.
type CleanCache interface {
	Execute(out io.Writer) error
}

// CleanCacheCommand removes the persisted version cache.
type CleanCacheCommand struct {
	cache repositories.VersionCacheRepository
}

// NewCleanCacheCommand creates a new CleanCacheCommand.
func NewCleanCacheCommand(cache repositories.VersionCacheRepository) *CleanCacheCommand {
	return &CleanCacheCommand{cache: cache}
}

func (it *CleanCacheCommand) Execute(out io.Writer) error {
	if err := it.cache.Clean(); err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	fmt.Fprintln(writerOr(out), actionStyle.Sprint("Cache cleaned successfully."))
	return nil
}
