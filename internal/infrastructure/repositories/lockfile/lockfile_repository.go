package lockfile

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// Runner executes a command in dir and returns its standard error on failure.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// LockfileRepository regenerates lock files by running their package manager
// in the manifest directory.
type LockfileRepository struct {
	run Runner
}

var _ repositories.LockfileRepository = (*LockfileRepository)(nil)

// NewLockfileRepository creates a repository that runs real package managers.
func NewLockfileRepository() *LockfileRepository {
	return NewLockfileRepositoryWithRunner(execRunner)
}

// NewLockfileRepositoryWithRunner creates a repository using run to execute commands.
func NewLockfileRepositoryWithRunner(run Runner) *LockfileRepository {
	return &LockfileRepository{run: run}
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()
	return []byte(stderr.String()), err
}

// Detect returns the lock files present next to the manifest.
func (it *LockfileRepository) Detect(manifestPath string) []entities.LockfileType {
	var found []entities.LockfileType
	for _, lock := range entities.LockfilesFor(manifestPath) {
		if _, err := os.Stat(lock.PathNextTo(manifestPath)); err == nil {
			found = append(found, lock)
		}
	}
	return found
}

// Regenerate runs the lock file's command in the manifest directory.
func (it *LockfileRepository) Regenerate(
	ctx context.Context,
	manifestPath string,
	lockfile entities.LockfileType,
) error {
	dir := filepath.Dir(manifestPath)
	logger.Debugf("[lockfile] Running %s %s in %s", lockfile.Command, strings.Join(lockfile.Args, " "), dir)
	output, err := it.run(ctx, dir, lockfile.Command, lockfile.Args...)
	if err != nil {
		if len(strings.TrimSpace(string(output))) == 0 {
			return fmt.Errorf("failed to run `%s`: %w", lockfile.Command, err)
		}
		return fmt.Errorf("failed to regenerate %s: %s", lockfile.Filename, strings.TrimSpace(string(output)))
	}
	return nil
}
