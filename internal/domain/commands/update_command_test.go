//go:build unit

package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/upd/internal/infrastructure/repositories"
	"github.com/rios0rios0/upd/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/upd/test/infrastructure/repositorydoubles"
)

type updateFixture struct {
	updater   *doubles.SpyUpdaterRepository
	registry  *doubles.MockRegistryRepository
	discovery *doubles.StubFileDiscoveryRepository
	cache     *doubles.SpyVersionCacheRepository
	lockfiles *doubles.SpyLockfileRepository
	prompt    *doubles.StubPromptRepository
	metrics   *doubles.DummyMetricsRepository
	output    *bytes.Buffer
}

func newUpdateFixture(paths ...string) *updateFixture {
	files := make([]entities.DiscoveredFile, 0, len(paths))
	for _, path := range paths {
		fileType, _ := entities.DetectFileType(path)
		files = append(files, entities.DiscoveredFile{Path: path, FileType: fileType})
	}
	return &updateFixture{
		updater:   doubles.NewSpyUpdaterRepository("requirements", entities.FileTypeRequirements),
		registry:  doubles.NewMockRegistryRepository(),
		discovery: &doubles.StubFileDiscoveryRepository{Files: files},
		cache:     doubles.NewSpyVersionCacheRepository(),
		lockfiles: &doubles.SpyLockfileRepository{},
		prompt:    &doubles.StubPromptRepository{},
		metrics:   &doubles.DummyMetricsRepository{},
		output:    &bytes.Buffer{},
	}
}

func (f *updateFixture) command() *commands.UpdateCommand {
	updaters := infraRepos.NewUpdaterRegistry()
	updaters.Register(f.updater)

	catalog := infraRepos.NewRegistryCatalog()
	catalog.Register(entities.LangPython, "pypi", func(_ entities.RegistrySettings) repositories.RegistryRepository {
		return f.registry
	})

	return commands.NewUpdateCommand(updaters, catalog, f.discovery, f.cache, f.lockfiles, f.prompt, f.metrics)
}

func (f *updateFixture) run(opts commands.UpdateOptions) error {
	opts.Output = f.output
	return f.command().Execute(context.Background(), entities.NewSettings(), opts)
}

func TestUpdateCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should report when no dependency files are found", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture()

		// when
		err := fixture.run(commands.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Contains(t, fixture.output.String(), "No dependency files found.")
		assert.Empty(t, fixture.updater.UpdateCalls())
	})

	t.Run("should default to the current directory when no path is given", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture()

		// when
		err := fixture.run(commands.UpdateOptions{Langs: []entities.Lang{entities.LangPython}})

		// then
		require.NoError(t, err)
		require.Len(t, fixture.discovery.Paths, 1)
		assert.Equal(t, []string{"."}, fixture.discovery.Paths[0])
		assert.Equal(t, []entities.Lang{entities.LangPython}, fixture.discovery.Langs[0])
	})

	t.Run("should pass the run options to every editor and print the changes", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 3).
			WithUnchanged(3).
			BuildResult()

		// when
		err := fixture.run(commands.UpdateOptions{FullPrecision: true})

		// then
		require.NoError(t, err)
		calls := fixture.updater.UpdateCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "mock", calls[0].Registry)
		assert.False(t, calls[0].Opts.DryRun)
		assert.True(t, calls[0].Opts.FullPrecision)
		assert.Equal(t, commands.DefaultConcurrency, calls[0].Opts.Concurrency)
		assert.NotNil(t, calls[0].Opts.Policy)

		output := fixture.output.String()
		assert.Contains(t, output, "requirements.txt:3: Updated requests 2.28.0 → 2.31.0")
		assert.Contains(t, output, "Updated 1 package(s) (1 minor) in 1 file(s), 3 up to date")
	})

	t.Run("should never write in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("flask", "2.0.0", "3.0.0", 1).
			BuildResult()
		fixture.lockfiles.Detected = map[string][]entities.LockfileType{
			"requirements.txt": {{Filename: "poetry.lock"}},
		}

		// when
		err := fixture.run(commands.UpdateOptions{DryRun: true, Lock: true})

		// then
		require.NoError(t, err)
		assert.True(t, fixture.updater.UpdateCalls()[0].Opts.DryRun)
		assert.Empty(t, fixture.lockfiles.Regenerated)
		output := fixture.output.String()
		assert.Contains(t, output, "Would update flask 2.0.0 → 3.0.0 (MAJOR)")
		assert.Contains(t, output, "Would update 1 package(s) (1 major) in 1 file(s), 0 up to date")
	})

	t.Run("should fail the check when updates are pending", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.31.0", "2.31.1", 1).
			BuildResult()

		// when
		err := fixture.run(commands.UpdateOptions{Check: true})

		// then
		require.ErrorIs(t, err, entities.ErrChecksFailed)
		assert.True(t, fixture.updater.UpdateCalls()[0].Opts.DryRun)
	})

	t.Run("should pass the check when everything is up to date", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUnchanged(2).
			BuildResult()

		// when
		err := fixture.run(commands.UpdateOptions{Check: true})

		// then
		require.NoError(t, err)
		assert.Contains(t, fixture.output.String(), "Scanned 1 file(s), all dependencies up to date")
	})

	t.Run("should hide and not count changes excluded by the update filter", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 1).
			BuildResult()

		// when
		err := fixture.run(commands.UpdateOptions{Check: true, Filter: entities.UpdateFilter{Major: true}})

		// then
		require.NoError(t, err)
		output := fixture.output.String()
		assert.NotContains(t, output, "requests")
		assert.Contains(t, output, "all dependencies up to date")
	})

	t.Run("should keep processing other files when one fails", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("a/requirements.txt", "b/requirements.txt")
		fixture.updater.UpdateErr["a/requirements.txt"] = errors.New("boom")
		fixture.updater.Results["b/requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.30.0", "2.31.0", 1).
			BuildResult()

		// when
		err := fixture.run(commands.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Len(t, fixture.updater.UpdateCalls(), 2)
		output := fixture.output.String()
		assert.Contains(t, output, "Error processing a/requirements.txt: boom")
		assert.Contains(t, output, "b/requirements.txt:1: Updated requests")
		assert.Contains(t, output, "1 error(s) occurred")
	})

	t.Run("should print results in discovery order", func(t *testing.T) {
		t.Parallel()

		// given
		paths := []string{"a/requirements.txt", "b/requirements.txt", "c/requirements.txt"}
		fixture := newUpdateFixture(paths...)
		for _, path := range paths {
			fixture.updater.Results[path] = entitybuilders.NewUpdateResultBuilder().
				WithUpdate("pkg", "1.0.0", "1.0.1", 1).
				BuildResult()
		}

		// when
		err := fixture.run(commands.UpdateOptions{Concurrency: 3})

		// then
		require.NoError(t, err)
		output := fixture.output.String()
		first := strings.Index(output, "a/requirements.txt")
		second := strings.Index(output, "b/requirements.txt")
		third := strings.Index(output, "c/requirements.txt")
		assert.Less(t, first, second)
		assert.Less(t, second, third)
	})

	t.Run("should report files without a registered editor as errors", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("go.mod")

		// when
		err := fixture.run(commands.UpdateOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, fixture.updater.UpdateCalls())
		assert.Contains(t, fixture.output.String(), "Error processing go.mod")
	})

	t.Run("should mark pinned changes", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("django", "4.2.0", "4.1.0", 2).
			WithPin("django", "4.2.0", "4.1.0", 2).
			BuildResult()

		// when
		err := fixture.run(commands.UpdateOptions{})

		// then
		require.NoError(t, err)
		output := fixture.output.String()
		assert.Contains(t, output, "Updated django 4.2.0 → 4.1.0 (pinned)")
		assert.Equal(t, 1, strings.Count(output, "django 4.2.0"))
	})

	t.Run("should apply only the approved updates in interactive mode", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 1).
			WithUpdate("flask", "2.0.0", "3.0.0", 2).
			BuildResult()
		fixture.prompt.Decisions = []entities.Decision{entities.DecisionYes, entities.DecisionNo}

		// when
		err := fixture.run(commands.UpdateOptions{Interactive: true})

		// then
		require.NoError(t, err)
		assert.True(t, fixture.updater.UpdateCalls()[0].Opts.DryRun)
		require.Len(t, fixture.prompt.Asked, 2)
		assert.True(t, fixture.prompt.Asked[1].IsMajor)

		applied := fixture.updater.ApplyCalls()
		require.Len(t, applied, 1)
		assert.Equal(t, "requirements.txt", applied[0].Path)
		assert.Equal(t, []entities.VersionRewrite{
			{Name: "requests", Line: 1, From: "2.28.0", To: "2.31.0"},
		}, applied[0].Rewrites)
		assert.Contains(t, fixture.output.String(), "Applied 1 of 2 update(s) in 1 file(s)")
	})

	t.Run("should write nothing when the user quits at the first prompt", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 1).
			WithUpdate("flask", "2.0.0", "3.0.0", 2).
			BuildResult()
		fixture.prompt.Decisions = []entities.Decision{entities.DecisionQuit}

		// when
		err := fixture.run(commands.UpdateOptions{Interactive: true})

		// then
		require.NoError(t, err)
		assert.Len(t, fixture.prompt.Asked, 1)
		assert.Empty(t, fixture.updater.ApplyCalls())
		output := fixture.output.String()
		assert.Contains(t, output, "Skipping remaining updates...")
		assert.Contains(t, output, "No updates applied.")
	})

	t.Run("should return the prompt error", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 1).
			BuildResult()
		fixture.prompt.AskErr = errors.New("no tty")

		// when
		err := fixture.run(commands.UpdateOptions{Interactive: true})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tty")
		assert.Empty(t, fixture.updater.ApplyCalls())
	})

	t.Run("should regenerate lock files next to modified manifests", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("a/requirements.txt", "b/requirements.txt")
		fixture.updater.Results["a/requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 1).
			BuildResult()
		fixture.updater.Results["b/requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUnchanged(1).
			BuildResult()
		lock := entities.LockfileType{Filename: "poetry.lock", Command: "poetry", Args: []string{"lock"}}
		fixture.lockfiles.Detected = map[string][]entities.LockfileType{
			"a/requirements.txt": {lock},
			"b/requirements.txt": {lock},
		}

		// when
		err := fixture.run(commands.UpdateOptions{Lock: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a/requirements.txt|poetry.lock"}, fixture.lockfiles.Regenerated)
		assert.Contains(t, fixture.output.String(), "Regenerated poetry.lock")
	})

	t.Run("should report lock file failures without failing the run", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		fixture.updater.Results["requirements.txt"] = entitybuilders.NewUpdateResultBuilder().
			WithUpdate("requests", "2.28.0", "2.31.0", 1).
			BuildResult()
		fixture.lockfiles.Detected = map[string][]entities.LockfileType{
			"requirements.txt": {{Filename: "uv.lock"}},
		}
		fixture.lockfiles.RegenerateErr = errors.New("failed to regenerate uv.lock: boom")

		// when
		err := fixture.run(commands.UpdateOptions{Lock: true})

		// then
		require.NoError(t, err)
		assert.Contains(t, fixture.output.String(), "failed to regenerate uv.lock: boom")
	})

	t.Run("should prune and save the cache once and export metrics", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")

		// when
		err := fixture.run(commands.UpdateOptions{MetricsFile: "metrics.prom"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, fixture.cache.PruneCount)
		assert.Equal(t, 1, fixture.cache.SaveCount)
		assert.Equal(t, []string{"metrics.prom"}, fixture.metrics.Written)
	})

	t.Run("should leave the cache untouched when caching is disabled", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")

		// when
		err := fixture.run(commands.UpdateOptions{NoCache: true})

		// then
		require.NoError(t, err)
		assert.Zero(t, fixture.cache.PruneCount)
		assert.Zero(t, fixture.cache.SaveCount)
	})

	t.Run("should return the discovery error", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture()
		fixture.discovery.DiscoverErr = errors.New("permission denied")

		// when
		err := fixture.run(commands.UpdateOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newUpdateFixture("requirements.txt")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		err := fixture.command().Execute(ctx, entities.NewSettings(), commands.UpdateOptions{Output: fixture.output})

		// then
		require.ErrorIs(t, err, context.Canceled)
	})
}
