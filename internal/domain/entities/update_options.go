package entities

// PackagePolicy answers the ignore and pin questions for a package name.
type PackagePolicy interface {
	ShouldIgnore(name string) bool
	PinnedVersion(name string) (string, bool)
}

// UpdateOptions holds runtime options passed to manifest editors. It is shared
// read-only between concurrent file edits.
type UpdateOptions struct {
	DryRun        bool
	FullPrecision bool
	Policy        PackagePolicy
	// Concurrency bounds the registry lookups of a single file; zero means unbounded.
	Concurrency int
}

// IsIgnored reports whether the policy ignores the package.
func (o UpdateOptions) IsIgnored(name string) bool {
	return o.Policy != nil && o.Policy.ShouldIgnore(name)
}

// Pin returns the pinned version for the package, if any.
func (o UpdateOptions) Pin(name string) (string, bool) {
	if o.Policy == nil {
		return "", false
	}
	return o.Policy.PinnedVersion(name)
}
