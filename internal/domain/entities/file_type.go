package entities

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Lang identifies a language ecosystem.
type Lang string

const (
	LangPython Lang = "python"
	LangNode   Lang = "node"
	LangRust   Lang = "rust"
	LangGo     Lang = "go"
)

// AllLangs lists every supported ecosystem in display order.
func AllLangs() []Lang {
	return []Lang{LangPython, LangNode, LangRust, LangGo}
}

// ParseLang resolves a user supplied ecosystem name, accepting the common aliases.
func ParseLang(raw string) (Lang, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "python", "py":
		return LangPython, nil
	case "node", "js", "javascript", "npm":
		return LangNode, nil
	case "rust", "cargo":
		return LangRust, nil
	case "go", "golang":
		return LangGo, nil
	default:
		return "", fmt.Errorf("unknown language %q (expected python, node, rust or go)", raw)
	}
}

// FileType identifies a manifest format.
type FileType string

const (
	FileTypeRequirements FileType = "requirements"
	FileTypePyProject    FileType = "pyproject"
	FileTypePackageJSON  FileType = "package.json"
	FileTypeCargoToml    FileType = "cargo"
	FileTypeGoMod        FileType = "go.mod"
)

// Lang returns the ecosystem a manifest format belongs to.
func (t FileType) Lang() Lang {
	switch t {
	case FileTypeRequirements, FileTypePyProject:
		return LangPython
	case FileTypePackageJSON:
		return LangNode
	case FileTypeCargoToml:
		return LangRust
	case FileTypeGoMod:
		return LangGo
	default:
		return ""
	}
}

// DetectFileType classifies a path by its base name. The second return value is
// false when the file is not a supported manifest.
func DetectFileType(path string) (FileType, bool) {
	name := filepath.Base(path)

	switch name {
	case "pyproject.toml":
		return FileTypePyProject, true
	case "package.json":
		return FileTypePackageJSON, true
	case "Cargo.toml":
		return FileTypeCargoToml, true
	case "go.mod":
		return FileTypeGoMod, true
	}

	if isRequirementsName(name) {
		return FileTypeRequirements, true
	}
	return "", false
}

func isRequirementsName(name string) bool {
	var stem string
	switch {
	case strings.HasSuffix(name, ".txt"):
		stem = strings.TrimSuffix(name, ".txt")
	case strings.HasSuffix(name, ".in"):
		stem = strings.TrimSuffix(name, ".in")
	default:
		return false
	}

	if stem == "requirements" {
		return true
	}
	if strings.HasPrefix(stem, "requirements-") || strings.HasPrefix(stem, "requirements_") {
		return true
	}
	for _, sep := range []string{"-", "_", "."} {
		if strings.HasSuffix(stem, sep+"requirements") {
			return true
		}
	}
	return false
}

// DiscoveredFile is a manifest found on disk together with its detected format.
type DiscoveredFile struct {
	Path     string
	FileType FileType
}

// FilterByLangs keeps only the files whose ecosystem is in langs. An empty filter keeps everything.
func FilterByLangs(files []DiscoveredFile, langs []Lang) []DiscoveredFile {
	if len(langs) == 0 {
		return files
	}
	allowed := make(map[Lang]bool, len(langs))
	for _, l := range langs {
		allowed[l] = true
	}
	result := make([]DiscoveredFile, 0, len(files))
	for _, f := range files {
		if allowed[f.FileType.Lang()] {
			result = append(result, f)
		}
	}
	return result
}
