package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/upd/internal/infrastructure/repositories"
)

// Align is the interface for the align command.
type Align interface {
	Execute(opts AlignOptions) error
}

// AlignOptions holds runtime options for an alignment run.
type AlignOptions struct {
	Paths   []string
	Langs   []entities.Lang
	DryRun  bool
	Check   bool
	Verbose bool
	Output  io.Writer
}

// AlignCommand brings every occurrence of a package to the highest version
// already declared in the scanned files. It never contacts a registry.
type AlignCommand struct {
	updaters  *infraRepos.UpdaterRegistry
	discovery repositories.FileDiscoveryRepository
}

// NewAlignCommand creates a new AlignCommand.
func NewAlignCommand(
	updaters *infraRepos.UpdaterRegistry,
	discovery repositories.FileDiscoveryRepository,
) *AlignCommand {
	return &AlignCommand{updaters: updaters, discovery: discovery}
}

// Execute scans every file first and only then writes, one edit per file.
func (it *AlignCommand) Execute(opts AlignOptions) error {
	out := writerOr(opts.Output)

	files, err := it.discovery.Discover(defaultPaths(opts.Paths), opts.Langs)
	if err != nil {
		return fmt.Errorf("failed to discover dependency files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, warnStyle.Sprint("No dependency files found."))
		return nil
	}

	occurrences := scanOccurrences(out, it.updaters, files)
	result := entities.FindAlignments(occurrences, len(files))
	if result.MisalignedCount == 0 {
		fmt.Fprintf(out, "%s All packages aligned across %d file(s)\n", actionStyle.Sprint(checkMark), len(files))
		return nil
	}

	printAlignments(out, result, opts.Verbose)

	if opts.Check {
		fmt.Fprintf(out, "\n%s misaligned occurrence(s) found\n", errCountStyle.Sprint(result.MisalignedCount))
		return entities.ErrChecksFailed
	}
	if opts.DryRun {
		fmt.Fprintf(out, "\nWould align %s occurrence(s)\n", countStyle.Sprint(result.MisalignedCount))
		return nil
	}

	fileTypes := make(map[string]entities.FileType, len(files))
	for _, f := range files {
		fileTypes[f.Path] = f.FileType
	}

	byFile := result.RewritesByFile()
	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	applied, touched := 0, 0
	for _, path := range paths {
		count, applyErr := it.updaters.ForFileType(fileTypes[path]).ApplyRewrites(path, byFile[path])
		if applyErr != nil {
			fmt.Fprintln(out, errorStyle.Sprintf("Error writing %s: %v", path, applyErr))
			continue
		}
		applied += count
		if count > 0 {
			touched++
		}
	}
	fmt.Fprintf(out, "\n%s Aligned %s occurrence(s) in %d file(s)\n",
		actionStyle.Sprint(checkMark), countStyle.Sprint(applied), touched)
	return nil
}

func printAlignments(out io.Writer, result entities.AlignResult, verbose bool) {
	for _, pkg := range result.Packages {
		misaligned := pkg.MisalignedOccurrences()
		if len(misaligned) == 0 && !verbose {
			continue
		}
		fmt.Fprintf(out, "%s (%s) -> %s\n", nameStyle.Sprint(pkg.PackageName), pkg.Lang, newStyle.Sprint(pkg.HighestVersion))
		for _, occ := range pkg.Occurrences {
			switch {
			case occ.HasUpperBound:
				fmt.Fprintf(out, "  %s %s %s\n", locationStyle.Sprint(location(occ.FilePath, occ.Line)),
					oldStyle.Sprint(occ.Version), warnStyle.Sprint("(constrained, skipped)"))
			case occ.Version != pkg.HighestVersion:
				fmt.Fprintf(out, "  %s %s → %s\n", locationStyle.Sprint(location(occ.FilePath, occ.Line)),
					oldStyle.Sprint(occ.Version), newStyle.Sprint(pkg.HighestVersion))
			case verbose:
				fmt.Fprintf(out, "  %s %s\n", locationStyle.Sprint(location(occ.FilePath, occ.Line)), occ.Version)
			}
		}
	}
}
