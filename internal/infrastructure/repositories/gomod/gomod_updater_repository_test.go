//go:build unit

package gomod_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/gomod"
	doubles "github.com/rios0rios0/upd/test/infrastructure/repositorydoubles"
)

const manifest = `module example.com/demo

go 1.22

require (
	github.com/spf13/cobra v1.7.0
	golang.org/x/mod v0.14.0 // indirect
	github.com/old/thing v1.0.0
	github.com/pseudo/pkg v0.0.0-20230101000000-abcdefabcdef
	github.com/docker/docker v20.10.0+incompatible
)

require github.com/single/line v1.2.0

replace github.com/old/thing => ../thing
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readManifest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func registry() *doubles.MockRegistryRepository {
	return doubles.NewMockRegistryRepository().
		WithVersion("github.com/spf13/cobra", "v1.8.0").
		WithVersion("golang.org/x/mod", "v0.17.0").
		WithVersion("github.com/old/thing", "v2.0.0").
		WithVersion("github.com/docker/docker", "24.0.7").
		WithVersion("github.com/single/line", "v1.3.0")
}

func TestGoModUpdaterRepositoryUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite require directives and keep replaced modules", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		mock := registry()
		repository := gomod.NewGoModUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, mock, entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, `module example.com/demo

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	golang.org/x/mod v0.17.0 // indirect
	github.com/old/thing v1.0.0
	github.com/pseudo/pkg v0.0.0-20230101000000-abcdefabcdef
	github.com/docker/docker v24.0.7+incompatible
)

require github.com/single/line v1.3.0

replace github.com/old/thing => ../thing
`, readManifest(t, path))
		assert.Len(t, result.Updated, 4)
		assert.Equal(t, 2, result.Unchanged)
		assert.NotContains(t, mock.Calls(), "latest:github.com/old/thing")
		assert.NotContains(t, mock.Calls(), "latest:github.com/pseudo/pkg")
	})

	t.Run("should leave the file alone in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		repository := gomod.NewGoModUpdaterRepository()

		// when
		result, err := repository.Update(
			context.Background(), path, registry(), entities.UpdateOptions{DryRun: true},
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, manifest, readManifest(t, path))
		assert.Len(t, result.Updated, 4)
	})

	t.Run("should report pins in both lists and add the v prefix", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, "module example.com/demo\n\nrequire github.com/spf13/cobra v1.7.0\n")
		settings := entities.NewSettings()
		settings.Pin["github.com/spf13/cobra"] = "1.7.1"
		repository := gomod.NewGoModUpdaterRepository()

		// when
		result, err := repository.Update(
			context.Background(), path, doubles.NewMockRegistryRepository(), entities.UpdateOptions{Policy: settings},
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, "module example.com/demo\n\nrequire github.com/spf13/cobra v1.7.1\n", readManifest(t, path))
		assert.Equal(t, []entities.VersionChange{
			{Name: "github.com/spf13/cobra", From: "v1.7.0", To: "v1.7.1", Line: 3},
		}, result.Pinned)
		assert.Equal(t, result.Pinned, result.Updated)
	})

	t.Run("should collect registry errors without failing the file", func(t *testing.T) {
		t.Parallel()

		// given
		content := "module example.com/demo\n\nrequire example.com/missing v1.0.0\n"
		path := writeManifest(t, content)
		repository := gomod.NewGoModUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, registry(), entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "example.com/missing")
		assert.Equal(t, content, readManifest(t, path))
	})

	t.Run("should leave every byte in place when nothing is newer", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		mock := doubles.NewMockRegistryRepository().
			WithVersion("github.com/spf13/cobra", "v1.7.0").
			WithVersion("golang.org/x/mod", "v0.14.0").
			WithVersion("github.com/docker/docker", "v20.10.0+incompatible").
			WithVersion("github.com/single/line", "v1.2.0")
		repository := gomod.NewGoModUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, mock, entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, result.Updated)
		assert.Equal(t, 6, result.Unchanged)
		assert.Equal(t, manifest, readManifest(t, path))
	})

	t.Run("should keep modules named in a replace block and the block itself", func(t *testing.T) {
		t.Parallel()

		// given
		content := `module example.com/demo

go 1.22

require (
	github.com/a/one v1.0.0
	github.com/b/two v1.1.0
	github.com/c/three v0.3.0
)

replace (
	github.com/a/one => ../one
	github.com/b/two v1.1.0 => github.com/fork/two v1.1.5
)
`
		path := writeManifest(t, content)
		mock := doubles.NewMockRegistryRepository().
			WithVersion("github.com/a/one", "v2.0.0").
			WithVersion("github.com/b/two", "v1.4.0").
			WithVersion("github.com/c/three", "v0.4.0")
		repository := gomod.NewGoModUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, mock, entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, strings.Replace(content, "github.com/c/three v0.3.0", "github.com/c/three v0.4.0", 1),
			readManifest(t, path))
		assert.Equal(t, []entities.VersionChange{
			{Name: "github.com/c/three", From: "v0.3.0", To: "v0.4.0", Line: 8},
		}, result.Updated)
		assert.Equal(t, 2, result.Unchanged)
		assert.Equal(t, []string{"latest:github.com/c/three"}, mock.Calls())
	})

	t.Run("should fail on an invalid go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, "module\nrequire (\n")
		repository := gomod.NewGoModUpdaterRepository()

		// when
		_, err := repository.Update(context.Background(), path, registry(), entities.UpdateOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse go.mod")
	})
}

func TestGoModUpdaterRepositoryParseDependencies(t *testing.T) {
	t.Parallel()

	t.Run("should mark replaced and pseudo-versioned modules", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		repository := gomod.NewGoModUpdaterRepository()

		// when
		deps, err := repository.ParseDependencies(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.ParsedDependency{
			{Name: "github.com/spf13/cobra", Version: "v1.7.0", Line: 6},
			{Name: "golang.org/x/mod", Version: "v0.14.0", Line: 7},
			{Name: "github.com/old/thing", Version: "v1.0.0", Line: 8, HasUpperBound: true},
			{
				Name:          "github.com/pseudo/pkg",
				Version:       "v0.0.0-20230101000000-abcdefabcdef",
				Line:          9,
				HasUpperBound: true,
			},
			{Name: "github.com/docker/docker", Version: "v20.10.0+incompatible", Line: 10},
			{Name: "github.com/single/line", Version: "v1.2.0", Line: 13},
		}, deps)
	})
}

func TestGoModUpdaterRepositoryApplyRewrites(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite matching modules and skip frozen ones", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		repository := gomod.NewGoModUpdaterRepository()
		rewrites := []entities.VersionRewrite{
			{Name: "github.com/spf13/cobra", From: "v1.7.0", To: "1.8.0"},
			{Name: "github.com/old/thing", From: "v1.0.0", To: "v2.0.0"},
		}

		// when
		applied, err := repository.ApplyRewrites(path, rewrites)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, applied)
		content := readManifest(t, path)
		assert.Contains(t, content, "github.com/spf13/cobra v1.8.0\n")
		assert.Contains(t, content, "github.com/old/thing v1.0.0\n")
	})
}
