//go:build unit

package cargo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/cargo"
	doubles "github.com/rios0rios0/upd/test/infrastructure/repositorydoubles"
)

const manifest = `[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1.0.150"
rand_core = { package = "rand", version = "0.8.0", features = ["small_rng"] }
local = { path = "../local", version = "0.1.0" }
forked = { git = "https://example.com/forked.git" }
ceiling = "<2.0.0"
ranged = ">=0.5.0, <0.7.0"

[dependencies.tokio]
version = "1.28.0"
features = ["full"]

[dev-dependencies]
mockall = "^0.11.0"

[workspace.dependencies]
anyhow = "~1.0.70"

[target.'cfg(unix)'.dependencies]
libc = "0.2.140"
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
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
		WithVersion("serde", "1.0.190").
		WithVersion("rand", "0.8.5").
		WithVersion("tokio", "1.35.1").
		WithVersion("mockall", "0.12.1").
		WithVersion("anyhow", "1.0.79").
		WithVersion("libc", "0.2.151").
		WithMatching("ranged", ">=0.5.0, <0.7.0", "0.6.4")
}

func TestCargoUpdaterRepositoryUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite every registry dependency table", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		mock := registry()
		repository := cargo.NewCargoUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, mock, entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, `[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1.0.190"
rand_core = { package = "rand", version = "0.8.5", features = ["small_rng"] }
local = { path = "../local", version = "0.1.0" }
forked = { git = "https://example.com/forked.git" }
ceiling = "<2.0.0"
ranged = ">=0.6.4, <0.7.0"

[dependencies.tokio]
version = "1.35.1"
features = ["full"]

[dev-dependencies]
mockall = "^0.12.1"

[workspace.dependencies]
anyhow = "~1.0.79"

[target.'cfg(unix)'.dependencies]
libc = "0.2.151"
`, readManifest(t, path))
		assert.Len(t, result.Updated, 7)
		assert.Equal(t, 1, result.Unchanged)
		assert.Contains(t, mock.Calls(), "latest:rand")
		assert.NotContains(t, mock.Calls(), "latest:rand_core")
		assert.NotContains(t, mock.Calls(), "latest:local")
		assert.NotContains(t, mock.Calls(), "latest:ceiling")
		assert.NotContains(t, mock.Calls(), "matching:ceiling")
	})

	t.Run("should report changes without writing in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		repository := cargo.NewCargoUpdaterRepository()

		// when
		result, err := repository.Update(
			context.Background(), path, registry(), entities.UpdateOptions{DryRun: true},
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, manifest, readManifest(t, path))
		assert.Len(t, result.Updated, 7)
	})

	t.Run("should report changed pins only in the pinned list", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, "[dependencies]\nserde = \"1.0.150\"\nlibc = \"0.2.140\"\n")
		mock := registry()
		settings := entities.NewSettings()
		settings.Pin["serde"] = "1.0.160"
		settings.Pin["libc"] = "0.2.140"
		opts := entities.UpdateOptions{Policy: settings}
		repository := cargo.NewCargoUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, mock, opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, "[dependencies]\nserde = \"1.0.160\"\nlibc = \"0.2.140\"\n", readManifest(t, path))
		assert.Empty(t, result.Updated)
		require.Len(t, result.Pinned, 1)
		assert.Equal(t, "serde", result.Pinned[0].Name)
		assert.Empty(t, mock.Calls())
	})

	t.Run("should record ignored crates and leave them alone", func(t *testing.T) {
		t.Parallel()

		// given
		content := "[dependencies]\nserde = \"1.0.150\"\n"
		path := writeManifest(t, content)
		settings := entities.NewSettings()
		settings.Ignore = []string{"serde"}
		opts := entities.UpdateOptions{Policy: settings}
		repository := cargo.NewCargoUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, registry(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, content, readManifest(t, path))
		require.Len(t, result.Ignored, 1)
		assert.Equal(t, 2, result.Ignored[0].Line)
	})

	t.Run("should collect registry errors per crate", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, "[dependencies]\nmissing = \"1.0.0\"\nserde = \"1.0.150\"\n")
		repository := cargo.NewCargoUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, registry(), entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "missing")
		assert.Equal(t, "[dependencies]\nmissing = \"1.0.0\"\nserde = \"1.0.190\"\n", readManifest(t, path))
	})

	t.Run("should fail on an invalid document", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, "[dependencies\nserde = 1.0\n")
		repository := cargo.NewCargoUpdaterRepository()

		// when
		_, err := repository.Update(context.Background(), path, registry(), entities.UpdateOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Cargo.toml")
	})

	t.Run("should keep a file byte-identical when nothing changes", func(t *testing.T) {
		t.Parallel()

		// given
		content := "[dependencies]\r\nserde = \"1.0.190\"\r\n"
		path := writeManifest(t, content)
		repository := cargo.NewCargoUpdaterRepository()

		// when
		result, err := repository.Update(context.Background(), path, registry(), entities.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, content, readManifest(t, path))
		assert.Equal(t, 1, result.Unchanged)
	})

	t.Run("should not report escaped requirements it cannot rewrite", func(t *testing.T) {
		t.Parallel()

		// given
		content := "[dependencies]\nserde = \"\\u005e1.0.150\"\nlibc = \"0.2.151\"\n"
		path := writeManifest(t, content)
		mock := registry()
		repository := cargo.NewCargoUpdaterRepository()

		for range 2 {
			// when
			result, err := repository.Update(context.Background(), path, mock, entities.UpdateOptions{})

			// then
			require.NoError(t, err)
			assert.Empty(t, result.Updated)
			assert.Equal(t, 2, result.Unchanged)
			assert.Equal(t, content, readManifest(t, path))
		}
		assert.NotContains(t, mock.Calls(), "latest:serde")
	})
}

func TestCargoUpdaterRepositoryParseDependencies(t *testing.T) {
	t.Parallel()

	t.Run("should list registry crates with lines and upper bounds", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, manifest)
		repository := cargo.NewCargoUpdaterRepository()

		// when
		deps, err := repository.ParseDependencies(path)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 8)
		assert.Equal(t, entities.ParsedDependency{Name: "serde", Version: "1.0.150", Line: 6}, deps[0])
		assert.Equal(t, "rand_core", deps[1].Name)
		assert.Equal(t, entities.ParsedDependency{
			Name: "ceiling", Version: "2.0.0", Line: 10, HasUpperBound: true,
		}, deps[2])
		assert.True(t, deps[3].HasUpperBound)
		assert.Equal(t, entities.ParsedDependency{Name: "tokio", Version: "1.28.0", Line: 14}, deps[4])
	})
}

func TestCargoUpdaterRepositoryApplyRewrites(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite the named crate on the given line", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeManifest(t, "[dependencies]\nserde = \"1.0.150\"\n\n[dev-dependencies]\nserde = \"1.0.150\"\n")
		repository := cargo.NewCargoUpdaterRepository()
		rewrites := []entities.VersionRewrite{{Name: "serde", From: "1.0.150", To: "1.0.190", Line: 5}}

		// when
		applied, err := repository.ApplyRewrites(path, rewrites)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, applied)
		assert.Equal(t,
			"[dependencies]\nserde = \"1.0.150\"\n\n[dev-dependencies]\nserde = \"1.0.190\"\n",
			readManifest(t, path),
		)
	})

	t.Run("should apply nothing when the current version differs", func(t *testing.T) {
		t.Parallel()

		// given
		content := "[dependencies]\nserde = \"1.0.150\"\n"
		path := writeManifest(t, content)
		repository := cargo.NewCargoUpdaterRepository()
		rewrites := []entities.VersionRewrite{{Name: "serde", From: "1.0.100", To: "1.0.190"}}

		// when
		applied, err := repository.ApplyRewrites(path, rewrites)

		// then
		require.NoError(t, err)
		assert.Zero(t, applied)
		assert.Equal(t, content, readManifest(t, path))
	})
}
