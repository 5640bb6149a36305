package discovery

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

const gitignoreFile = ".gitignore"

// prunedDirs are never descended, whatever the ignore files say.
var prunedDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
}

// FileDiscoveryRepository walks directories looking for manifests, honouring
// .gitignore files and skipping hidden entries.
type FileDiscoveryRepository struct{}

var _ repositories.FileDiscoveryRepository = (*FileDiscoveryRepository)(nil)

// NewFileDiscoveryRepository creates the discovery walker.
func NewFileDiscoveryRepository() *FileDiscoveryRepository {
	return &FileDiscoveryRepository{}
}

// Discover returns the manifests found under paths, sorted and without
// duplicates. Files named explicitly are kept even when ignored.
func (it *FileDiscoveryRepository) Discover(
	paths []string,
	langs []entities.Lang,
) ([]entities.DiscoveredFile, error) {
	seen := make(map[string]bool)
	var files []entities.DiscoveredFile
	add := func(path string, fileType entities.FileType) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		files = append(files, entities.DiscoveredFile{Path: clean, FileType: fileType})
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", root, err)
		}
		if !info.IsDir() {
			if fileType, ok := entities.DetectFileType(root); ok {
				add(root, fileType)
			} else {
				logger.Debugf("[discovery] %s is not a supported manifest", root)
			}
			continue
		}
		if err = walk(root, add); err != nil {
			return nil, err
		}
	}

	files = entities.FilterByLangs(files, langs)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func walk(root string, add func(string, entities.FileType)) error {
	patterns := make(map[string][]gitignore.Pattern)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debugf("[discovery] Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			patterns[rel] = readIgnoreFile(path, nil)
			return nil
		}

		name := d.Name()
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if strings.HasPrefix(name, ".") || (d.IsDir() && prunedDirs[name]) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored(patterns, parts, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			patterns[filepath.ToSlash(rel)] = readIgnoreFile(path, parts)
			return nil
		}
		if fileType, ok := entities.DetectFileType(path); ok {
			add(path, fileType)
		}
		return nil
	})
}

// ignored matches parts against the patterns of every ancestor directory.
func ignored(patterns map[string][]gitignore.Pattern, parts []string, isDir bool) bool {
	var all []gitignore.Pattern
	all = append(all, patterns["."]...)
	for i := 1; i < len(parts); i++ {
		all = append(all, patterns[strings.Join(parts[:i], "/")]...)
	}
	if len(all) == 0 {
		return false
	}
	return gitignore.NewMatcher(all).Match(parts, isDir)
}

// readIgnoreFile parses dir/.gitignore. domain is the directory relative to
// the walk root.
func readIgnoreFile(dir string, domain []string) []gitignore.Pattern {
	file, err := os.Open(filepath.Join(dir, gitignoreFile))
	if err != nil {
		return nil
	}
	defer file.Close()

	var result []gitignore.Pattern
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result = append(result, gitignore.ParsePattern(line, domain))
	}
	return result
}
