//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// SpyUpdaterRepository implements repositories.UpdaterRepository as a configurable spy.
// It is safe for concurrent use.
type SpyUpdaterRepository struct {
	// --- identity ---
	UpdaterName string
	FileType    entities.FileType

	// --- Update ---
	Results   map[string]entities.UpdateResult
	UpdateErr map[string]error

	// --- ParseDependencies ---
	Parsed   map[string][]entities.ParsedDependency
	ParseErr map[string]error

	// --- ApplyRewrites ---
	ApplyErr error

	mu          sync.Mutex
	updateCalls []UpdateCall
	applyCalls  []ApplyCall
}

// UpdateCall records a single invocation of Update.
type UpdateCall struct {
	Path     string
	Registry string
	Opts     entities.UpdateOptions
}

// ApplyCall records a single invocation of ApplyRewrites.
type ApplyCall struct {
	Path     string
	Rewrites []entities.VersionRewrite
}

var _ repositories.UpdaterRepository = (*SpyUpdaterRepository)(nil)

// NewSpyUpdaterRepository creates a spy owning the given file type.
func NewSpyUpdaterRepository(name string, fileType entities.FileType) *SpyUpdaterRepository {
	return &SpyUpdaterRepository{
		UpdaterName: name,
		FileType:    fileType,
		Results:     make(map[string]entities.UpdateResult),
		UpdateErr:   make(map[string]error),
		Parsed:      make(map[string][]entities.ParsedDependency),
		ParseErr:    make(map[string]error),
	}
}

func (u *SpyUpdaterRepository) Name() string { return u.UpdaterName }

func (u *SpyUpdaterRepository) Handles(fileType entities.FileType) bool { return fileType == u.FileType }

func (u *SpyUpdaterRepository) Update(
	_ context.Context,
	path string,
	registry repositories.RegistryRepository,
	opts entities.UpdateOptions,
) (entities.UpdateResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.updateCalls = append(u.updateCalls, UpdateCall{Path: path, Registry: registry.Name(), Opts: opts})
	return u.Results[path], u.UpdateErr[path]
}

func (u *SpyUpdaterRepository) ParseDependencies(path string) ([]entities.ParsedDependency, error) {
	return u.Parsed[path], u.ParseErr[path]
}

func (u *SpyUpdaterRepository) ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.applyCalls = append(u.applyCalls, ApplyCall{Path: path, Rewrites: rewrites})
	if u.ApplyErr != nil {
		return 0, u.ApplyErr
	}
	return len(rewrites), nil
}

// UpdateCalls returns the recorded Update invocations.
func (u *SpyUpdaterRepository) UpdateCalls() []UpdateCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]UpdateCall(nil), u.updateCalls...)
}

// ApplyCalls returns the recorded ApplyRewrites invocations.
func (u *SpyUpdaterRepository) ApplyCalls() []ApplyCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]ApplyCall(nil), u.applyCalls...)
}
