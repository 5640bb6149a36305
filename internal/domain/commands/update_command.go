package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/upd/internal/infrastructure/repositories"
)

// DefaultConcurrency bounds how many manifests are processed at once.
const DefaultConcurrency = 8

// Update is the interface for the update command.
type Update interface {
	Execute(ctx context.Context, settings *entities.Settings, opts UpdateOptions) error
}

// UpdateOptions holds runtime options for a single update run.
type UpdateOptions struct {
	Paths         []string
	Langs         []entities.Lang
	DryRun        bool
	NoCache       bool
	Verbose       bool
	FullPrecision bool
	Interactive   bool
	Check         bool
	Lock          bool
	Filter        entities.UpdateFilter
	Concurrency   int
	MetricsFile   string
	Output        io.Writer
	Progress      Progress
}

func (o UpdateOptions) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// UpdateCommand orchestrates an update run:
// discover manifests -> resolve and rewrite them concurrently -> report.
type UpdateCommand struct {
	updaters  *infraRepos.UpdaterRegistry
	catalog   *infraRepos.RegistryCatalog
	discovery repositories.FileDiscoveryRepository
	cache     repositories.VersionCacheRepository
	lockfiles repositories.LockfileRepository
	prompt    repositories.PromptRepository
	metrics   repositories.MetricsRepository
}

// NewUpdateCommand creates a new UpdateCommand.
func NewUpdateCommand(
	updaters *infraRepos.UpdaterRegistry,
	catalog *infraRepos.RegistryCatalog,
	discovery repositories.FileDiscoveryRepository,
	cache repositories.VersionCacheRepository,
	lockfiles repositories.LockfileRepository,
	prompt repositories.PromptRepository,
	metrics repositories.MetricsRepository,
) *UpdateCommand {
	return &UpdateCommand{
		updaters:  updaters,
		catalog:   catalog,
		discovery: discovery,
		cache:     cache,
		lockfiles: lockfiles,
		prompt:    prompt,
		metrics:   metrics,
	}
}

type fileOutcome struct {
	file   entities.DiscoveredFile
	result entities.UpdateResult
	err    error
}

// Execute runs the update cycle over the given paths.
func (it *UpdateCommand) Execute(ctx context.Context, settings *entities.Settings, opts UpdateOptions) error {
	out := writerOr(opts.Output)
	if settings == nil {
		settings = entities.NewSettings()
	}

	files, err := it.discovery.Discover(defaultPaths(opts.Paths), opts.Langs)
	if err != nil {
		return fmt.Errorf("failed to discover dependency files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, warnStyle.Sprint("No dependency files found."))
		return nil
	}
	if opts.Verbose {
		fmt.Fprintln(out, infoStyle.Sprintf("Found %d dependency file(s)", len(files)))
	}

	registries, err := it.catalog.Open(settings, it.cache, it.metrics, !opts.NoCache)
	if err != nil {
		return fmt.Errorf("failed to open package registries: %w", err)
	}
	dryRun := opts.DryRun || opts.Check || opts.Interactive
	editOpts := entities.UpdateOptions{
		DryRun:        dryRun,
		FullPrecision: opts.FullPrecision,
		Policy:        settings,
		Concurrency:   opts.concurrency(),
	}

	progress := progressOr(opts.Progress)
	progress.Start(fmt.Sprintf("Checking %d file(s)...", len(files)))
	outcomes, err := it.processFiles(ctx, files, registries, editOpts, opts.concurrency())
	progress.Stop()
	if err != nil {
		return err
	}

	reviewing := opts.Interactive && !opts.Check
	total := report(out, outcomes, opts.Filter, dryRun, opts.Verbose, !reviewing)

	var modified []string
	switch {
	case reviewing:
		modified, err = it.review(out, outcomes, opts.Filter)
		if err != nil {
			it.finish(opts)
			return err
		}
	case !dryRun:
		for _, o := range outcomes {
			if o.err == nil && o.result.HasChanges() {
				modified = append(modified, o.file.Path)
			}
		}
	}

	if opts.Lock && len(modified) > 0 {
		it.regenerateLockfiles(ctx, out, modified, opts.Verbose)
	}

	if !reviewing {
		fmt.Fprintln(out)
		printSummary(out, total, len(files), dryRun, opts.Filter)
	}
	it.finish(opts)

	if opts.Check && countUpdates(total.Changes(), opts.Filter).total > 0 {
		return entities.ErrChecksFailed
	}
	return nil
}

func (it *UpdateCommand) processFiles(
	ctx context.Context,
	files []entities.DiscoveredFile,
	registries map[entities.Lang]repositories.RegistryRepository,
	editOpts entities.UpdateOptions,
	limit int,
) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(files))

	var group errgroup.Group
	group.SetLimit(limit)
	for i, file := range files {
		outcomes[i].file = file
		updater := it.updaters.ForFileType(file.FileType)
		registry := registries[file.FileType.Lang()]
		if updater == nil || registry == nil {
			outcomes[i].err = fmt.Errorf("no editor registered for %s files", file.FileType)
			continue
		}
		group.Go(func() error {
			logger.Debugf("Processing: %s", file.Path)
			outcomes[i].result, outcomes[i].err = updater.Update(ctx, file.Path, registry, editOpts)
			it.observeFile(outcomes[i])
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (it *UpdateCommand) observeFile(o fileOutcome) {
	if it.metrics != nil {
		it.metrics.ObserveFile(string(o.file.FileType), len(o.result.Changes()), o.err)
	}
}

// review prompts for every pending change and applies only the approved ones.
// It returns the files that were written.
func (it *UpdateCommand) review(
	out io.Writer,
	outcomes []fileOutcome,
	filter entities.UpdateFilter,
) ([]string, error) {
	pending := pendingUpdates(outcomes, filter)
	if len(pending) == 0 {
		fmt.Fprintf(out, "%s All dependencies up to date\n", actionStyle.Sprint(checkMark))
		return nil, nil
	}

	fmt.Fprintf(out, "\n%s %d update(s) available\n\n", promptStyle.Sprint("?"), len(pending))
	reviewed, err := entities.ReviewUpdates(pending, func(index int, update entities.PendingUpdate) (entities.Decision, error) {
		decision, askErr := it.prompt.Ask(index, len(pending), update)
		switch {
		case askErr != nil:
		case decision == entities.DecisionAll:
			fmt.Fprintln(out, infoStyle.Sprint("Applying all remaining updates..."))
		case decision == entities.DecisionQuit:
			fmt.Fprintln(out, warnStyle.Sprint("Skipping remaining updates..."))
		}
		return decision, askErr
	})
	if err != nil {
		return nil, fmt.Errorf("interactive review failed: %w", err)
	}

	order, byFile := entities.ApprovedByFile(reviewed)
	if len(order) == 0 {
		fmt.Fprintln(out, warnStyle.Sprint("No updates applied."))
		return nil, nil
	}

	fileTypes := make(map[string]entities.FileType, len(outcomes))
	for _, o := range outcomes {
		fileTypes[o.file.Path] = o.file.FileType
	}

	applied := 0
	var written []string
	for _, path := range order {
		updater := it.updaters.ForFileType(fileTypes[path])
		count, applyErr := updater.ApplyRewrites(path, byFile[path])
		if applyErr != nil {
			fmt.Fprintln(out, errorStyle.Sprintf("Error writing %s: %v", path, applyErr))
			continue
		}
		applied += count
		if count > 0 {
			written = append(written, path)
		}
	}

	fmt.Fprintf(out, "\n%s Applied %s of %d update(s) in %d file(s)\n",
		actionStyle.Sprint(checkMark), countStyle.Sprint(applied), len(pending), len(written))
	return written, nil
}

func pendingUpdates(outcomes []fileOutcome, filter entities.UpdateFilter) []entities.PendingUpdate {
	var pending []entities.PendingUpdate
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		for _, c := range o.result.Changes() {
			kind := entities.ClassifyUpdate(c.From, c.To)
			if !filter.Allows(kind) {
				continue
			}
			pending = append(pending, entities.PendingUpdate{
				File:       o.file.Path,
				FileType:   o.file.FileType,
				Line:       c.Line,
				Package:    c.Name,
				OldVersion: c.From,
				NewVersion: c.To,
				IsMajor:    kind == entities.UpdateMajor,
			})
		}
	}
	return pending
}

func (it *UpdateCommand) regenerateLockfiles(ctx context.Context, out io.Writer, manifests []string, verbose bool) {
	for _, manifest := range manifests {
		for _, lock := range it.lockfiles.Detect(manifest) {
			if verbose {
				fmt.Fprintln(out, infoStyle.Sprintf("Regenerating %s with `%s %s`...",
					lock.Filename, lock.Command, strings.Join(lock.Args, " ")))
			}
			if err := it.lockfiles.Regenerate(ctx, manifest, lock); err != nil {
				fmt.Fprintln(out, errorStyle.Sprint(err.Error()))
				continue
			}
			fmt.Fprintf(out, "%s Regenerated %s\n", actionStyle.Sprint(checkMark), nameStyle.Sprint(lock.Filename))
		}
	}
}

// finish persists the version cache and exports metrics, once per run.
func (it *UpdateCommand) finish(opts UpdateOptions) {
	if !opts.NoCache && it.cache != nil {
		it.cache.Prune()
		if err := it.cache.Save(); err != nil {
			logger.Warnf("[cache] Failed to save version cache: %v", err)
		}
	}
	if it.metrics != nil {
		if err := it.metrics.WriteTo(opts.MetricsFile); err != nil {
			logger.Warnf("[metrics] Failed to write %s: %v", opts.MetricsFile, err)
		}
	}
}

// report prints the outcome of every file in discovery order and merges them.
// Failed files become errors of the merged result.
func report(
	out io.Writer,
	outcomes []fileOutcome,
	filter entities.UpdateFilter,
	dryRun, verbose, printChanges bool,
) entities.UpdateResult {
	var total entities.UpdateResult
	action := "Updated"
	if dryRun {
		action = "Would update"
	}
	for _, o := range outcomes {
		if o.err != nil {
			fmt.Fprintln(out, errorStyle.Sprintf("Error processing %s: %v", o.file.Path, o.err))
			total.Errors = append(total.Errors, fmt.Sprintf("%s: %v", o.file.Path, o.err))
			continue
		}
		if printChanges {
			printFileResult(out, o.file.Path, o.result, action, filter, verbose)
		}
		total.Merge(o.result)
	}
	return total
}

func printFileResult(
	out io.Writer,
	path string,
	result entities.UpdateResult,
	action string,
	filter entities.UpdateFilter,
	verbose bool,
) {
	pinned := make(map[string]bool, len(result.Pinned))
	for _, p := range result.Pinned {
		pinned[fmt.Sprintf("%s@%d", p.Name, p.Line)] = true
	}

	for _, c := range result.Changes() {
		kind := entities.ClassifyUpdate(c.From, c.To)
		if !filter.Allows(kind) {
			continue
		}
		suffix := ""
		if kind == entities.UpdateMajor {
			suffix = majorStyle.Sprint(" (MAJOR)")
		}
		if pinned[fmt.Sprintf("%s@%d", c.Name, c.Line)] {
			suffix += warnStyle.Sprint(" (pinned)")
		}
		fmt.Fprintf(out, "%s %s %s %s → %s%s\n",
			locationStyle.Sprint(location(path, c.Line)),
			actionStyle.Sprint(action),
			nameStyle.Sprint(c.Name),
			oldStyle.Sprint(c.From),
			newStyle.Sprint(c.To),
			suffix,
		)
	}

	if verbose {
		for _, ignored := range result.Ignored {
			fmt.Fprintf(out, "%s %s %s %s\n",
				locationStyle.Sprint(location(path, ignored.Line)),
				warnStyle.Sprint("Ignored"),
				nameStyle.Sprint(ignored.Name),
				oldStyle.Sprint(ignored.Version),
			)
		}
	}

	for _, e := range result.Errors {
		fmt.Fprintf(out, "%s %s %s\n", locationStyle.Sprint(location(path, 0)), errorStyle.Sprint("Error:"), e)
	}
}

type updateCounts struct {
	major, minor, patch, total int
}

func countUpdates(changes []entities.VersionChange, filter entities.UpdateFilter) updateCounts {
	var counts updateCounts
	for _, c := range changes {
		kind := entities.ClassifyUpdate(c.From, c.To)
		if !filter.Allows(kind) {
			continue
		}
		switch kind {
		case entities.UpdateMajor:
			counts.major++
		case entities.UpdateMinor:
			counts.minor++
		case entities.UpdatePatch:
			counts.patch++
		}
		counts.total++
	}
	return counts
}

func printSummary(out io.Writer, result entities.UpdateResult, fileCount int, dryRun bool, filter entities.UpdateFilter) {
	counts := countUpdates(result.Changes(), filter)

	if counts.total == 0 {
		fmt.Fprintf(out, "%s Scanned %d file(s), all dependencies up to date\n", actionStyle.Sprint(checkMark), fileCount)
	} else {
		action := "Updated"
		if dryRun {
			action = "Would update"
		}
		var parts []string
		if counts.major > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", majorStyle.Sprint(counts.major), warnStyle.Sprint("major")))
		}
		if counts.minor > 0 {
			parts = append(parts, fmt.Sprintf("%d minor", counts.minor))
		}
		if counts.patch > 0 {
			parts = append(parts, fmt.Sprintf("%d patch", counts.patch))
		}
		fmt.Fprintf(out, "%s %s package(s) (%s) in %d file(s), %d up to date\n",
			action, countStyle.Sprint(counts.total), strings.Join(parts, ", "), fileCount, result.Unchanged)
	}

	if len(result.Ignored) > 0 {
		fmt.Fprintf(out, "%d package(s) ignored by configuration\n", len(result.Ignored))
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "%s error(s) occurred\n", errCountStyle.Sprint(len(result.Errors)))
	}
}
