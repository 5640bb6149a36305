//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

func TestUniqueAuditPackages(t *testing.T) {
	t.Parallel()

	t.Run("should de-duplicate queries and normalise Go versions", func(t *testing.T) {
		t.Parallel()

		// given
		occurrences := []entities.PackageOccurrence{
			occurrence("requests", "2.31.0", "a/requirements.txt", 1),
			occurrence("requests", "2.31.0", "b/requirements.txt", 1),
			occurrence("github.com/docker/docker", "v20.10.0+incompatible", "go.mod", 4),
			occurrence("lodash", "4.17.20", "package.json", 3),
		}

		// when
		packages := entities.UniqueAuditPackages(occurrences)

		// then
		assert.Equal(t, []entities.AuditPackage{
			{Name: "requests", Version: "2.31.0", Lang: entities.LangPython},
			{Name: "github.com/docker/docker", Version: "v20.10.0", Lang: entities.LangGo},
			{Name: "lodash", Version: "4.17.20", Lang: entities.LangNode},
		}, packages)
	})
}

func TestAuditResult(t *testing.T) {
	t.Parallel()

	t.Run("should count advisories across packages", func(t *testing.T) {
		t.Parallel()

		// given
		result := entities.AuditResult{Vulnerable: []entities.PackageAuditResult{
			{Vulnerabilities: []entities.Vulnerability{{ID: "GHSA-1"}, {ID: "GHSA-2"}}},
			{Vulnerabilities: []entities.Vulnerability{{ID: "PYSEC-3"}}},
		}}

		// when / then
		assert.Equal(t, 3, result.TotalVulnerabilities())
		assert.Equal(t, "crates.io", entities.LangRust.Ecosystem())
		assert.Equal(t, "PyPI", entities.LangPython.Ecosystem())
	})
}
