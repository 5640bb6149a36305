//go:build unit

package fileio_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
)

func TestManifest(t *testing.T) {
	t.Parallel()

	t.Run("should strip and restore the byte order mark", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "requirements.txt")
		require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFrequests==2.0.0\r\n"), 0o600))

		// when
		manifest, err := fileio.Read(path)
		require.NoError(t, err)
		writeErr := manifest.Write("requests==2.31.0\r\n")

		// then
		require.NoError(t, writeErr)
		assert.True(t, manifest.HasBOM)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "\xEF\xBB\xBFrequests==2.31.0\r\n", string(data))
	})

	t.Run("should keep the file mode", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not preserved on windows")
		}

		// given
		path := filepath.Join(t.TempDir(), "go.mod")
		require.NoError(t, os.WriteFile(path, []byte("module x\n"), 0o600))
		manifest, err := fileio.Read(path)
		require.NoError(t, err)

		// when
		require.NoError(t, manifest.Write("module y\n"))

		// then
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary file may be left behind")
	})

	t.Run("should refuse oversized manifests", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "package.json")
		require.NoError(t, os.WriteFile(path, make([]byte, fileio.MaxFileSize+1), 0o600))

		// when
		_, err := fileio.Read(path)

		// then
		require.ErrorIs(t, err, entities.ErrFileTooLarge)
	})

	t.Run("should report a missing file", func(t *testing.T) {
		t.Parallel()

		// given / when
		_, err := fileio.Read(filepath.Join(t.TempDir(), "missing.txt"))

		// then
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLines(t *testing.T) {
	t.Parallel()

	t.Run("should round trip mixed line endings", func(t *testing.T) {
		t.Parallel()

		// given
		content := "a==1\r\nb==2\n\nc==3"

		// when
		lines := fileio.SplitLines(content)

		// then
		require.Len(t, lines, 4)
		assert.Equal(t, fileio.Line{Text: "a==1", Ending: "\r\n"}, lines[0])
		assert.Equal(t, fileio.Line{Text: "", Ending: "\n"}, lines[2])
		assert.Equal(t, fileio.Line{Text: "c==3"}, lines[3])
		assert.Equal(t, content, fileio.JoinLines(lines))
	})

	t.Run("should locate lines and apply spans from the end", func(t *testing.T) {
		t.Parallel()

		// given
		content := "x = \"1.0\"\ny = \"2.0\"\n"

		// when
		updated := fileio.ApplySpans(content, []fileio.Span{
			{Start: 5, End: 8, Text: "1.5"},
			{Start: 15, End: 18, Text: "2.10"},
		})

		// then
		assert.Equal(t, "x = \"1.5\"\ny = \"2.10\"\n", updated)
		assert.Equal(t, 1, fileio.LineAt(content, 5))
		assert.Equal(t, 2, fileio.LineAt(content, 15))
		assert.Equal(t, 3, fileio.LineAt(content, 1000))
	})
}
