package entities

import "path/filepath"

// LockfileType is a lock file that can be regenerated by its package manager.
type LockfileType struct {
	Filename string
	Manifest string
	Command  string
	Args     []string
}

// LockfileTypes lists every supported lock file in detection order.
func LockfileTypes() []LockfileType {
	return []LockfileType{
		{Filename: "poetry.lock", Manifest: "pyproject.toml", Command: "poetry", Args: []string{"lock", "--no-update"}},
		{Filename: "uv.lock", Manifest: "pyproject.toml", Command: "uv", Args: []string{"lock"}},
		{Filename: "package-lock.json", Manifest: "package.json", Command: "npm", Args: []string{"install"}},
		{Filename: "yarn.lock", Manifest: "package.json", Command: "yarn", Args: []string{"install"}},
		{Filename: "pnpm-lock.yaml", Manifest: "package.json", Command: "pnpm", Args: []string{"install"}},
		{Filename: "bun.lockb", Manifest: "package.json", Command: "bun", Args: []string{"install"}},
		{Filename: "Cargo.lock", Manifest: "Cargo.toml", Command: "cargo", Args: []string{"update"}},
		{Filename: "go.sum", Manifest: "go.mod", Command: "go", Args: []string{"mod", "tidy"}},
	}
}

// LockfilesFor returns the lock file types that may accompany the manifest.
func LockfilesFor(manifestPath string) []LockfileType {
	name := filepath.Base(manifestPath)
	var result []LockfileType
	for _, lock := range LockfileTypes() {
		if lock.Manifest == name {
			result = append(result, lock)
		}
	}
	return result
}

// PathNextTo returns where the lock file would live beside the manifest.
func (l LockfileType) PathNextTo(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), l.Filename)
}
