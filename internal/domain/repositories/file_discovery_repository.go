package repositories

import "github.com/rios0rios0/upd/internal/domain/entities"

// FileDiscoveryRepository finds manifests under a set of files and directories.
type FileDiscoveryRepository interface {
	Discover(paths []string, langs []entities.Lang) ([]entities.DiscoveredFile, error)
}
