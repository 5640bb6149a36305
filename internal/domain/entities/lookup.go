package entities

// LookupKind selects which registry query resolves a declaration.
type LookupKind int

const (
	LookupLatest LookupKind = iota
	LookupPrerelease
	LookupMatching
)

func (k LookupKind) String() string {
	switch k {
	case LookupPrerelease:
		return "prerelease"
	case LookupMatching:
		return "matching"
	default:
		return "latest"
	}
}

// SelectLookup decides the query for a declared version. A pre-release current
// version always wins over the constraint shape.
func SelectLookup(policy VersionPolicy, current string, constrained bool) LookupKind {
	switch {
	case !policy.IsStable(current):
		return LookupPrerelease
	case constrained:
		return LookupMatching
	default:
		return LookupLatest
	}
}
