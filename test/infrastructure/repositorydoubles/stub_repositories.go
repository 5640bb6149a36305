//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"time"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// StubFileDiscoveryRepository returns a fixed list of files.
type StubFileDiscoveryRepository struct {
	Files       []entities.DiscoveredFile
	DiscoverErr error
	// spy: arguments received
	Paths [][]string
	Langs [][]entities.Lang
}

var _ repositories.FileDiscoveryRepository = (*StubFileDiscoveryRepository)(nil)

func (s *StubFileDiscoveryRepository) Discover(
	paths []string,
	langs []entities.Lang,
) ([]entities.DiscoveredFile, error) {
	s.Paths = append(s.Paths, paths)
	s.Langs = append(s.Langs, langs)
	return entities.FilterByLangs(s.Files, langs), s.DiscoverErr
}

// StubPromptRepository answers prompts from a scripted list of decisions.
// Once the script is exhausted every further prompt is answered with No.
type StubPromptRepository struct {
	Decisions []entities.Decision
	AskErr    error
	// spy: updates that were shown
	Asked []entities.PendingUpdate
}

var _ repositories.PromptRepository = (*StubPromptRepository)(nil)

func (s *StubPromptRepository) Ask(index, _ int, update entities.PendingUpdate) (entities.Decision, error) {
	s.Asked = append(s.Asked, update)
	if s.AskErr != nil {
		return entities.DecisionQuit, s.AskErr
	}
	if index < len(s.Decisions) {
		return s.Decisions[index], nil
	}
	return entities.DecisionNo, nil
}

// SpyLockfileRepository reports configured lock files and records regenerations.
type SpyLockfileRepository struct {
	Detected      map[string][]entities.LockfileType
	RegenerateErr error
	// spy: "manifest|lockfile" pairs regenerated
	Regenerated []string
}

var _ repositories.LockfileRepository = (*SpyLockfileRepository)(nil)

func (s *SpyLockfileRepository) Detect(manifestPath string) []entities.LockfileType {
	return s.Detected[manifestPath]
}

func (s *SpyLockfileRepository) Regenerate(
	_ context.Context,
	manifestPath string,
	lockfile entities.LockfileType,
) error {
	s.Regenerated = append(s.Regenerated, manifestPath+"|"+lockfile.Filename)
	return s.RegenerateErr
}

// StubVulnerabilityRepository returns a fixed audit result.
type StubVulnerabilityRepository struct {
	Result   entities.AuditResult
	CheckErr error
	// spy: packages received
	Packages []entities.AuditPackage
}

var _ repositories.VulnerabilityRepository = (*StubVulnerabilityRepository)(nil)

func (s *StubVulnerabilityRepository) CheckPackages(
	_ context.Context,
	packages []entities.AuditPackage,
) (entities.AuditResult, error) {
	s.Packages = packages
	return s.Result, s.CheckErr
}

// SpyVersionCacheRepository is an in-memory cache counting lifecycle calls.
// It is not safe for concurrent use; pair it with a cache-disabled run or a
// single file.
type SpyVersionCacheRepository struct {
	Entries    map[string]string
	SaveErr    error
	CleanErr   error
	PruneCount int
	SaveCount  int
	CleanCount int
}

var _ repositories.VersionCacheRepository = (*SpyVersionCacheRepository)(nil)

// NewSpyVersionCacheRepository creates an empty cache spy.
func NewSpyVersionCacheRepository() *SpyVersionCacheRepository {
	return &SpyVersionCacheRepository{Entries: make(map[string]string)}
}

func (s *SpyVersionCacheRepository) Get(registry, key string) (string, bool) {
	v, ok := s.Entries[registry+"/"+key]
	return v, ok
}

func (s *SpyVersionCacheRepository) Set(registry, key, version string) {
	s.Entries[registry+"/"+key] = version
}

func (s *SpyVersionCacheRepository) Prune() { s.PruneCount++ }

func (s *SpyVersionCacheRepository) Save() error {
	s.SaveCount++
	return s.SaveErr
}

func (s *SpyVersionCacheRepository) Clean() error {
	s.CleanCount++
	return s.CleanErr
}

func (s *SpyVersionCacheRepository) TTL() time.Duration { return 24 * time.Hour }

// DummyMetricsRepository discards every observation.
type DummyMetricsRepository struct {
	// spy: paths passed to WriteTo
	Written []string
}

var _ repositories.MetricsRepository = (*DummyMetricsRepository)(nil)

func (d *DummyMetricsRepository) ObserveLookup(_, _ string, _ bool, _ error) {}

func (d *DummyMetricsRepository) ObserveFile(_ string, _ int, _ error) {}

func (d *DummyMetricsRepository) WriteTo(path string) error {
	d.Written = append(d.Written, path)
	return nil
}
