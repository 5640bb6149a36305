package entities

import (
	pep440 "github.com/aquasecurity/go-pep440-version"
)

// parsePEP440 reads a Python package version. Unparsable strings are reported
// through ok so callers can fall back to a heuristic.
func parsePEP440(raw string) (pep440.Version, bool) {
	v, err := pep440.Parse(raw)
	if err != nil {
		return pep440.Version{}, false
	}
	return v, true
}

// satisfiesPEP440 evaluates a comma separated specifier set. <2.0 keeps
// excluding 2.0a1 unless the bound is itself a pre-release. An unparsable
// version or clause never satisfies.
func satisfiesPEP440(version, constraint string) bool {
	specifiers, err := pep440.NewSpecifiers(constraint)
	if err != nil {
		return false
	}
	v, ok := parsePEP440(version)
	if !ok {
		return false
	}
	return specifiers.Check(v)
}

// IsValidPEP440 reports whether the string parses as a PEP 440 version.
func IsValidPEP440(version string) bool {
	_, ok := parsePEP440(version)
	return ok
}
