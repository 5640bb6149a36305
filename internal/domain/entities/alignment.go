package entities

import (
	"sort"
	"strings"
)

// PackageAlignment gathers every occurrence of one package within one ecosystem.
type PackageAlignment struct {
	PackageName    string
	Lang           Lang
	HighestVersion string
	Occurrences    []PackageOccurrence
}

// HasMisalignment reports whether any unconstrained occurrence differs from the highest version.
func (a PackageAlignment) HasMisalignment() bool {
	return len(a.MisalignedOccurrences()) > 0
}

// MisalignedOccurrences returns the unconstrained occurrences that would be rewritten.
func (a PackageAlignment) MisalignedOccurrences() []PackageOccurrence {
	var result []PackageOccurrence
	for _, occ := range a.Occurrences {
		if !occ.HasUpperBound && occ.Version != a.HighestVersion {
			result = append(result, occ)
		}
	}
	return result
}

// AlignResult is the outcome of an alignment scan.
type AlignResult struct {
	Packages        []PackageAlignment
	MisalignedCount int
	TotalFiles      int
}

// AlignmentKey identifies a package across files.
type AlignmentKey struct {
	Name string
	Lang Lang
}

// GroupOccurrences buckets occurrences by lowercase name and ecosystem, keeping
// only packages that occur more than once. Buckets keep the input order.
func GroupOccurrences(occurrences []PackageOccurrence) map[AlignmentKey][]PackageOccurrence {
	groups := make(map[AlignmentKey][]PackageOccurrence)
	for _, occ := range occurrences {
		key := AlignmentKey{Name: strings.ToLower(occ.Name), Lang: occ.FileType.Lang()}
		groups[key] = append(groups[key], occ)
	}
	for key, group := range groups {
		if len(group) <= 1 {
			delete(groups, key)
		}
	}
	return groups
}

// FindAlignments computes the alignment target of every package that appears
// in more than one place. Packages without a stable unconstrained occurrence are
// skipped. The result is sorted by package name.
func FindAlignments(occurrences []PackageOccurrence, totalFiles int) AlignResult {
	result := AlignResult{TotalFiles: totalFiles}

	for key, group := range GroupOccurrences(occurrences) {
		policy := PolicyFor(key.Lang)
		highest := ""
		for _, occ := range group {
			if occ.HasUpperBound || !policy.IsStable(occ.Version) {
				continue
			}
			if highest == "" || policy.Compare(occ.Version, highest) > 0 {
				highest = occ.Version
			}
		}
		if highest == "" {
			continue
		}

		alignment := PackageAlignment{
			PackageName:    key.Name,
			Lang:           key.Lang,
			HighestVersion: highest,
			Occurrences:    group,
		}
		result.MisalignedCount += len(alignment.MisalignedOccurrences())
		result.Packages = append(result.Packages, alignment)
	}

	sort.SliceStable(result.Packages, func(i, j int) bool {
		a, b := result.Packages[i], result.Packages[j]
		if a.PackageName != b.PackageName {
			return a.PackageName < b.PackageName
		}
		return a.Lang < b.Lang
	})
	return result
}

// RewritesByFile groups the rewrites needed to align every misaligned package by
// target file, so each file is edited once.
func (r AlignResult) RewritesByFile() map[string][]VersionRewrite {
	byFile := make(map[string][]VersionRewrite)
	for _, pkg := range r.Packages {
		for _, occ := range pkg.MisalignedOccurrences() {
			byFile[occ.FilePath] = append(byFile[occ.FilePath], VersionRewrite{
				Name: occ.Name,
				Line: occ.Line,
				From: occ.Version,
				To:   pkg.HighestVersion,
			})
		}
	}
	return byFile
}
