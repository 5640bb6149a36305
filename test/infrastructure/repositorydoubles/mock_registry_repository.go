//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// MockRegistryRepository answers lookups from in-memory tables and records every call.
// It is safe for concurrent use.
type MockRegistryRepository struct {
	RegistryName string
	// Latest maps a package to its highest stable version.
	Latest map[string]string
	// Prereleases maps a package to its highest version including pre-releases.
	Prereleases map[string]string
	// Matching maps "pkg|constraint" to the answer of a constrained lookup.
	Matching map[string]string
	// Errors makes every lookup of the package fail.
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

var _ repositories.RegistryRepository = (*MockRegistryRepository)(nil)

// NewMockRegistryRepository creates a mock named "mock" with empty tables.
func NewMockRegistryRepository() *MockRegistryRepository {
	return &MockRegistryRepository{
		RegistryName: "mock",
		Latest:       make(map[string]string),
		Prereleases:  make(map[string]string),
		Matching:     make(map[string]string),
		Errors:       make(map[string]error),
	}
}

// WithVersion sets the latest stable version of a package.
func (m *MockRegistryRepository) WithVersion(pkg, version string) *MockRegistryRepository {
	m.Latest[pkg] = version
	return m
}

// WithPrerelease sets the latest version including pre-releases.
func (m *MockRegistryRepository) WithPrerelease(pkg, version string) *MockRegistryRepository {
	m.Prereleases[pkg] = version
	return m
}

// WithMatching sets the answer for a constrained lookup.
func (m *MockRegistryRepository) WithMatching(pkg, constraint, version string) *MockRegistryRepository {
	m.Matching[pkg+"|"+constraint] = version
	return m
}

// WithError makes every lookup of pkg fail with err.
func (m *MockRegistryRepository) WithError(pkg string, err error) *MockRegistryRepository {
	m.Errors[pkg] = err
	return m
}

// Calls returns the recorded lookups as "kind:pkg" strings.
func (m *MockRegistryRepository) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockRegistryRepository) record(kind, pkg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, kind+":"+pkg)
}

func (m *MockRegistryRepository) Name() string { return m.RegistryName }

func (m *MockRegistryRepository) GetLatestVersion(_ context.Context, pkg string) (string, error) {
	m.record("latest", pkg)
	if err := m.Errors[pkg]; err != nil {
		return "", err
	}
	if v, ok := m.Latest[pkg]; ok {
		return v, nil
	}
	return "", fmt.Errorf("package '%s': %w", pkg, entities.ErrPackageNotFound)
}

func (m *MockRegistryRepository) GetLatestVersionIncludingPrereleases(
	_ context.Context,
	pkg string,
) (string, error) {
	m.record("prerelease", pkg)
	if err := m.Errors[pkg]; err != nil {
		return "", err
	}
	if v, ok := m.Prereleases[pkg]; ok {
		return v, nil
	}
	if v, ok := m.Latest[pkg]; ok {
		return v, nil
	}
	return "", fmt.Errorf("package '%s': %w", pkg, entities.ErrPackageNotFound)
}

func (m *MockRegistryRepository) GetLatestVersionMatching(
	_ context.Context,
	pkg, constraint string,
) (string, error) {
	m.record("matching", pkg)
	if err := m.Errors[pkg]; err != nil {
		return "", err
	}
	if v, ok := m.Matching[pkg+"|"+constraint]; ok {
		return v, nil
	}
	return "", fmt.Errorf("package '%s' with '%s': %w", pkg, constraint, entities.ErrNoMatchingVersion)
}
