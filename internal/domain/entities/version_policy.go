package entities

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"
)

// VersionPolicy encapsulates the version rules of one ecosystem.
type VersionPolicy interface {
	IsStable(version string) bool
	// Compare returns -1, 0 or +1. Unparsable input falls back to string ordering.
	Compare(a, b string) int
	Satisfies(version, constraint string) bool
}

// PolicyFor returns the version policy of an ecosystem.
func PolicyFor(lang Lang) VersionPolicy {
	switch lang {
	case LangPython:
		return PythonPolicy{}
	case LangGo:
		return GoPolicy{}
	default:
		return SemverPolicy{}
	}
}

// PythonPolicy implements PEP 440.
type PythonPolicy struct{}

var pythonPrereleaseMarker = regexp.MustCompile(`(?i)(alpha|beta|rc|dev|\d(a|b)\d*$|\d(a|b)\d)`)

func (PythonPolicy) IsStable(version string) bool {
	if v, ok := parsePEP440(version); ok {
		return !v.IsPreRelease()
	}
	return !pythonPrereleaseMarker.MatchString(version)
}

func (PythonPolicy) Compare(a, b string) int {
	va, okA := parsePEP440(a)
	vb, okB := parsePEP440(b)
	if !okA || !okB {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

func (PythonPolicy) Satisfies(version, constraint string) bool {
	return satisfiesPEP440(version, constraint)
}

// SemverPolicy implements semantic versioning for npm and Cargo.
type SemverPolicy struct{}

func cleanSemver(version string) string {
	return strings.TrimLeft(strings.TrimSpace(version), "^~=v")
}

func (SemverPolicy) IsStable(version string) bool {
	v, err := semver.NewVersion(cleanSemver(version))
	if err != nil {
		return true
	}
	return v.Prerelease() == ""
}

func (SemverPolicy) Compare(a, b string) int {
	ca, cb := cleanSemver(a), cleanSemver(b)
	va, errA := semver.NewVersion(ca)
	vb, errB := semver.NewVersion(cb)
	if errA != nil || errB != nil {
		return strings.Compare(ca, cb)
	}
	return va.Compare(vb)
}

func (SemverPolicy) Satisfies(version, constraint string) bool {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(cleanSemver(version))
	if err != nil {
		return false
	}
	return c.Check(v)
}

// GoPolicy implements Go module versions: semantic versions with a leading v
// and an optional +incompatible suffix.
type GoPolicy struct{}

// canonicalGoVersion returns the version in the form golang.org/x/mod/semver expects.
func canonicalGoVersion(version string) string {
	return "v" + StripGoVersion(version)
}

// StripGoVersion removes the leading v and the +incompatible suffix.
func StripGoVersion(version string) string {
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(version), "v"), "+incompatible")
}

func (GoPolicy) IsStable(version string) bool {
	v := canonicalGoVersion(version)
	if !modsemver.IsValid(v) {
		return true
	}
	return modsemver.Prerelease(v) == ""
}

func (GoPolicy) Compare(a, b string) int {
	va, vb := canonicalGoVersion(a), canonicalGoVersion(b)
	if !modsemver.IsValid(va) || !modsemver.IsValid(vb) {
		return strings.Compare(a, b)
	}
	return modsemver.Compare(va, vb)
}

func (GoPolicy) Satisfies(version, constraint string) bool {
	return SemverPolicy{}.Satisfies(StripGoVersion(version), constraint)
}

// MatchVersionPrecision truncates resolved to the number of dot separated
// components of original. When original has as many components or more, resolved
// is returned unchanged.
func MatchVersionPrecision(original, resolved string) string {
	precision := len(strings.Split(original, "."))
	parts := strings.Split(resolved, ".")
	if precision >= len(parts) {
		return resolved
	}
	return strings.Join(parts[:precision], ".")
}

// SplitRequirement separates a requirement such as "^1.2" or ">=1.2, <1.5"
// into the decoration before the first digit, the first version and whether
// more clauses follow.
func SplitRequirement(requirement string) (string, string, bool) {
	trimmed := strings.TrimSpace(requirement)
	start := strings.IndexFunc(trimmed, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return trimmed, "", false
	}
	rest := trimmed[start:]
	end := strings.IndexFunc(rest, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if end < 0 {
		return trimmed[:start], rest, false
	}
	return trimmed[:start], rest[:end], strings.Contains(rest[end:], ",")
}
