package repositories

import (
	"sort"

	"github.com/rios0rios0/upd/internal/domain/entities"
	domainRepos "github.com/rios0rios0/upd/internal/domain/repositories"
)

// UpdaterRegistry manages all registered manifest editors.
type UpdaterRegistry struct {
	updaters map[string]domainRepos.UpdaterRepository
}

// NewUpdaterRegistry creates an empty updater registry.
func NewUpdaterRegistry() *UpdaterRegistry {
	return &UpdaterRegistry{
		updaters: make(map[string]domainRepos.UpdaterRepository),
	}
}

// Register adds an updater under its name.
func (r *UpdaterRegistry) Register(u domainRepos.UpdaterRepository) {
	r.updaters[u.Name()] = u
}

// Get returns the updater with the given name, or nil if not registered.
func (r *UpdaterRegistry) Get(name string) domainRepos.UpdaterRepository {
	return r.updaters[name]
}

// ForFileType returns the editor owning the manifest format, or nil.
func (r *UpdaterRegistry) ForFileType(fileType entities.FileType) domainRepos.UpdaterRepository {
	for _, name := range r.Names() {
		if u := r.updaters[name]; u.Handles(fileType) {
			return u
		}
	}
	return nil
}

// All returns every registered updater ordered by name.
func (r *UpdaterRegistry) All() []domainRepos.UpdaterRepository {
	result := make([]domainRepos.UpdaterRepository, 0, len(r.updaters))
	for _, name := range r.Names() {
		result = append(result, r.updaters[name])
	}
	return result
}

// Names returns the sorted list of registered updater names.
func (r *UpdaterRegistry) Names() []string {
	names := make([]string, 0, len(r.updaters))
	for name := range r.updaters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
