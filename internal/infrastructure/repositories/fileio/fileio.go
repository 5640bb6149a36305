package fileio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// MaxFileSize bounds every manifest read.
const MaxFileSize = 10 << 20

var bom = []byte{0xEF, 0xBB, 0xBF}

// Manifest is a manifest file read into memory with its byte order mark removed.
type Manifest struct {
	Path    string
	Content string
	HasBOM  bool
	Mode    os.FileMode
}

// Read loads path, rejecting files larger than MaxFileSize.
func Read(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), entities.ErrFileTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, entities.ErrFileTooLarge)
	}

	hasBOM := bytes.HasPrefix(data, bom)
	if hasBOM {
		data = data[len(bom):]
	}
	return &Manifest{Path: path, Content: string(data), HasBOM: hasBOM, Mode: info.Mode().Perm()}, nil
}

// Write replaces the manifest content, restoring the byte order mark if the
// file had one.
func (m *Manifest) Write(content string) error {
	data := []byte(content)
	if m.HasBOM {
		data = append(append([]byte{}, bom...), data...)
	}
	return WriteAtomic(m.Path, data, m.Mode)
}

// WriteAtomic writes data to a temporary file in the target directory and
// renames it over path.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
