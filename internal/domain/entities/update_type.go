package entities

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// UpdateType classifies the size of a version bump.
type UpdateType string

const (
	UpdateMajor UpdateType = "major"
	UpdateMinor UpdateType = "minor"
	UpdatePatch UpdateType = "patch"
)

// ClassifyUpdate compares the leading numeric components of two versions.
// Operator prefixes such as ^ ~ >= and the v of Go versions are ignored.
func ClassifyUpdate(from, to string) UpdateType {
	a, b := leadingNumbers(from), leadingNumbers(to)
	switch {
	case b[0] > a[0]:
		return UpdateMajor
	case b[1] > a[1]:
		return UpdateMinor
	default:
		return UpdatePatch
	}
}

func leadingNumbers(version string) [3]int {
	version = strings.TrimLeft(strings.TrimSpace(version), "^~=<>!v")
	if v, err := semver.NewVersion(version); err == nil {
		return [3]int{int(v.Major()), int(v.Minor()), int(v.Patch())} //nolint:gosec // version components fit in int
	}

	// PEP 440 and other non-semver versions such as 1.0.post1 or 2024.1b2
	var result [3]int
	for i, part := range strings.SplitN(version, ".", 3) { //nolint:mnd // major.minor.patch
		end := 0
		for end < len(part) && part[end] >= '0' && part[end] <= '9' {
			end++
		}
		result[i], _ = strconv.Atoi(part[:end])
	}
	return result
}

// UpdateFilter restricts reported changes to the selected bump sizes.
type UpdateFilter struct {
	Major bool
	Minor bool
	Patch bool
}

// IsActive reports whether any bump size was selected.
func (f UpdateFilter) IsActive() bool {
	return f.Major || f.Minor || f.Patch
}

// Allows reports whether a change of the given type passes the filter.
func (f UpdateFilter) Allows(t UpdateType) bool {
	if !f.IsActive() {
		return true
	}
	switch t {
	case UpdateMajor:
		return f.Major
	case UpdateMinor:
		return f.Minor
	default:
		return f.Patch
	}
}
