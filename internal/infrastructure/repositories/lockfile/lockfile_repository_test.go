//go:build unit

package lockfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/lockfile"
)

type invocation struct {
	dir  string
	name string
	args []string
}

func fakeRunner(output string, err error, calls *[]invocation) lockfile.Runner {
	return func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, invocation{dir: dir, name: name, args: args})
		return []byte(output), err
	}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
}

func lockfileNamed(t *testing.T, name string) entities.LockfileType {
	t.Helper()
	for _, lock := range entities.LockfileTypes() {
		if lock.Filename == name {
			return lock
		}
	}
	require.FailNow(t, "unknown lock file", name)
	return entities.LockfileType{}
}

func TestLockfileRepositoryDetect(t *testing.T) {
	t.Parallel()

	t.Run("should list the lock files beside the manifest in detection order", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		touch(t, dir, "package.json", "yarn.lock", "package-lock.json", "Cargo.lock")
		repository := lockfile.NewLockfileRepository()

		// when
		found := repository.Detect(filepath.Join(dir, "package.json"))

		// then
		require.Len(t, found, 2)
		assert.Equal(t, "package-lock.json", found[0].Filename)
		assert.Equal(t, "yarn.lock", found[1].Filename)
	})

	t.Run("should find nothing for a manifest without lock files", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		touch(t, dir, "requirements.txt", "poetry.lock")
		repository := lockfile.NewLockfileRepository()

		// when
		found := repository.Detect(filepath.Join(dir, "requirements.txt"))

		// then
		assert.Empty(t, found)
	})
}

func TestLockfileRepositoryRegenerate(t *testing.T) {
	t.Parallel()

	t.Run("should run the package manager in the manifest directory", func(t *testing.T) {
		t.Parallel()

		// given
		var calls []invocation
		dir := t.TempDir()
		repository := lockfile.NewLockfileRepositoryWithRunner(fakeRunner("", nil, &calls))

		// when
		err := repository.Regenerate(
			context.Background(), filepath.Join(dir, "pyproject.toml"), lockfileNamed(t, "poetry.lock"),
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, []invocation{{dir: dir, name: "poetry", args: []string{"lock", "--no-update"}}}, calls)
	})

	t.Run("should surface the command output on failure", func(t *testing.T) {
		t.Parallel()

		// given
		var calls []invocation
		runner := fakeRunner("  error: could not resolve\n", errors.New("exit status 1"), &calls)
		repository := lockfile.NewLockfileRepositoryWithRunner(runner)

		// when
		err := repository.Regenerate(context.Background(), "Cargo.toml", lockfileNamed(t, "Cargo.lock"))

		// then
		require.Error(t, err)
		assert.Equal(t, "failed to regenerate Cargo.lock: error: could not resolve", err.Error())
	})

	t.Run("should wrap the error when the command prints nothing", func(t *testing.T) {
		t.Parallel()

		// given
		var calls []invocation
		cause := errors.New("executable file not found")
		repository := lockfile.NewLockfileRepositoryWithRunner(fakeRunner("", cause, &calls))

		// when
		err := repository.Regenerate(context.Background(), "go.mod", lockfileNamed(t, "go.sum"))

		// then
		require.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "failed to run `go`")
	})
}
