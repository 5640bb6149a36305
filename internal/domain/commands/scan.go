package commands

import (
	"fmt"
	"io"

	"github.com/rios0rios0/upd/internal/domain/entities"
	infraRepos "github.com/rios0rios0/upd/internal/infrastructure/repositories"
)

// scanOccurrences parses every file without touching the network. Files that
// fail to parse are reported on out and skipped.
func scanOccurrences(
	out io.Writer,
	updaters *infraRepos.UpdaterRegistry,
	files []entities.DiscoveredFile,
) []entities.PackageOccurrence {
	var occurrences []entities.PackageOccurrence
	for _, file := range files {
		updater := updaters.ForFileType(file.FileType)
		if updater == nil {
			continue
		}
		deps, err := updater.ParseDependencies(file.Path)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Sprintf("Error reading %s: %v", file.Path, err))
			continue
		}
		for _, dep := range deps {
			occurrences = append(occurrences, entities.PackageOccurrence{
				ParsedDependency: dep,
				FilePath:         file.Path,
				FileType:         file.FileType,
			})
		}
	}
	return occurrences
}

func defaultPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}
