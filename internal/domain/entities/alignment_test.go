//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

func occurrence(name, version, path string, line int) entities.PackageOccurrence {
	fileType, _ := entities.DetectFileType(path)
	return entities.PackageOccurrence{
		ParsedDependency: entities.ParsedDependency{Name: name, Version: version, Line: line},
		FilePath:         path,
		FileType:         fileType,
	}
}

func TestFindAlignments(t *testing.T) {
	t.Parallel()

	t.Run("should align every unconstrained occurrence to the highest stable version", func(t *testing.T) {
		t.Parallel()

		// given
		capped := occurrence("requests", "2.30.0", "c/requirements.txt", 1)
		capped.HasUpperBound = true
		occurrences := []entities.PackageOccurrence{
			occurrence("requests", "2.28.0", "a/requirements.txt", 3),
			occurrence("requests", "2.31.0", "b/requirements.txt", 1),
			capped,
		}

		// when
		result := entities.FindAlignments(occurrences, 3)

		// then
		require.Len(t, result.Packages, 1)
		assert.Equal(t, "2.31.0", result.Packages[0].HighestVersion)
		assert.Equal(t, 1, result.MisalignedCount)
		assert.Equal(t, 3, result.TotalFiles)
		assert.Equal(t, map[string][]entities.VersionRewrite{
			"a/requirements.txt": {{Name: "requests", Line: 3, From: "2.28.0", To: "2.31.0"}},
		}, result.RewritesByFile())
	})

	t.Run("should group names case-insensitively within one ecosystem", func(t *testing.T) {
		t.Parallel()

		// given
		occurrences := []entities.PackageOccurrence{
			occurrence("Django", "4.2.0", "a/requirements.txt", 1),
			occurrence("django", "5.0.1", "b/requirements.txt", 1),
			occurrence("django", "1.0.0", "web/package.json", 2),
		}

		// when
		result := entities.FindAlignments(occurrences, 3)

		// then
		require.Len(t, result.Packages, 1)
		assert.Equal(t, entities.LangPython, result.Packages[0].Lang)
		assert.Len(t, result.Packages[0].Occurrences, 2)
		assert.Equal(t, "5.0.1", result.Packages[0].HighestVersion)
	})

	t.Run("should skip packages declared only once or only as pre-releases", func(t *testing.T) {
		t.Parallel()

		// given
		occurrences := []entities.PackageOccurrence{
			occurrence("flask", "3.0.0", "a/requirements.txt", 1),
			occurrence("httpx", "1.0.0a1", "a/requirements.txt", 2),
			occurrence("httpx", "1.0.0a2", "b/requirements.txt", 2),
		}

		// when
		result := entities.FindAlignments(occurrences, 2)

		// then
		assert.Empty(t, result.Packages)
		assert.Zero(t, result.MisalignedCount)
	})

	t.Run("should sort packages by name", func(t *testing.T) {
		t.Parallel()

		// given
		occurrences := []entities.PackageOccurrence{
			occurrence("zod", "3.0.0", "a/package.json", 1),
			occurrence("zod", "3.1.0", "b/package.json", 1),
			occurrence("axios", "1.0.0", "a/package.json", 2),
			occurrence("axios", "1.0.0", "b/package.json", 2),
		}

		// when
		result := entities.FindAlignments(occurrences, 2)

		// then
		require.Len(t, result.Packages, 2)
		assert.Equal(t, "axios", result.Packages[0].PackageName)
		assert.False(t, result.Packages[0].HasMisalignment())
		assert.Equal(t, "zod", result.Packages[1].PackageName)
		assert.True(t, result.Packages[1].HasMisalignment())
	})
}
