//go:build unit

package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upd/internal/infrastructure/repositories/metrics"
)

func TestPrometheusMetricsRepository(t *testing.T) {
	t.Parallel()

	t.Run("should export counters in the textfile format", func(t *testing.T) {
		t.Parallel()

		// given
		repository := metrics.NewPrometheusMetricsRepository()
		repository.ObserveLookup("pypi", "latest", false, nil)
		repository.ObserveLookup("pypi", "latest", true, nil)
		repository.ObserveLookup("npm", "matching", false, errors.New("boom"))
		repository.ObserveFile("requirements", 2, nil)
		repository.ObserveFile("go.mod", 0, errors.New("parse"))
		path := filepath.Join(t.TempDir(), "upd.prom")

		// when
		err := repository.WriteTo(path)

		// then
		require.NoError(t, err)
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		text := string(data)
		assert.Contains(t, text, `upd_registry_lookups_total{kind="latest",registry="pypi",result="cached"} 1`)
		assert.Contains(t, text, `upd_registry_lookups_total{kind="latest",registry="pypi",result="fetched"} 1`)
		assert.Contains(t, text, `upd_registry_lookups_total{kind="matching",registry="npm",result="error"} 1`)
		assert.Contains(t, text, `upd_files_processed_total{file_type="go.mod",result="error"} 1`)
		assert.Contains(t, text, `upd_versions_changed_total{file_type="requirements"} 2`)
		assert.NotContains(t, text, `upd_versions_changed_total{file_type="go.mod"}`)
	})

	t.Run("should skip writing without a path", func(t *testing.T) {
		t.Parallel()

		// given
		repository := metrics.NewPrometheusMetricsRepository()

		// when / then
		require.NoError(t, repository.WriteTo(""))
		families, err := repository.Registry().Gather()
		require.NoError(t, err)
		assert.Empty(t, families)
	})
}
