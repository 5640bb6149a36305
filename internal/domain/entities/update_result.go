package entities

import "fmt"

// VersionChange records one version token that was (or would be) rewritten.
type VersionChange struct {
	Name string
	From string
	To   string
	Line int
}

// IgnoredPackage records a declaration skipped because of configuration.
type IgnoredPackage struct {
	Name    string
	Version string
	Line    int
}

// UpdateResult is the outcome of processing one or more manifests.
type UpdateResult struct {
	Updated   []VersionChange
	Pinned    []VersionChange
	Ignored   []IgnoredPackage
	Unchanged int
	Errors    []string
}

// AddError records a per-package failure as "name: message".
func (r *UpdateResult) AddError(name string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", name, err))
}

// Merge appends every list of other onto r and sums the unchanged counters.
func (r *UpdateResult) Merge(other UpdateResult) {
	r.Updated = append(r.Updated, other.Updated...)
	r.Pinned = append(r.Pinned, other.Pinned...)
	r.Ignored = append(r.Ignored, other.Ignored...)
	r.Unchanged += other.Unchanged
	r.Errors = append(r.Errors, other.Errors...)
}

// HasChanges reports whether any version token was (or would be) rewritten.
func (r *UpdateResult) HasChanges() bool {
	return len(r.Changes()) > 0
}

// Changes returns every distinct rewrite in the result. Line-oriented editors
// report pinned packages in both lists, so entries on the same line are
// collapsed, and pins that already matched are left out.
func (r *UpdateResult) Changes() []VersionChange {
	seen := make(map[string]bool, len(r.Updated)+len(r.Pinned))
	result := make([]VersionChange, 0, len(r.Updated)+len(r.Pinned))
	for _, list := range [][]VersionChange{r.Updated, r.Pinned} {
		for _, c := range list {
			if c.From == c.To {
				continue
			}
			key := fmt.Sprintf("%s@%d", c.Name, c.Line)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, c)
		}
	}
	return result
}
