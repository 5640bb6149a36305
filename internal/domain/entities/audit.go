package entities

// Ecosystem returns the OSV ecosystem name of a language.
func (l Lang) Ecosystem() string {
	switch l {
	case LangPython:
		return "PyPI"
	case LangNode:
		return "npm"
	case LangRust:
		return "crates.io"
	case LangGo:
		return "Go"
	default:
		return ""
	}
}

// AuditPackage is one (name, version, ecosystem) triple sent to the vulnerability database.
type AuditPackage struct {
	Name    string
	Version string
	Lang    Lang
}

// Vulnerability describes one advisory affecting a package version.
type Vulnerability struct {
	ID           string
	Summary      string
	Severity     string
	URL          string
	FixedVersion string
}

// PackageAuditResult lists the advisories of one vulnerable package.
type PackageAuditResult struct {
	Package         AuditPackage
	Vulnerabilities []Vulnerability
}

// AuditResult aggregates an audit run.
type AuditResult struct {
	Vulnerable []PackageAuditResult
	SafeCount  int
	Errors     []string
}

// TotalVulnerabilities counts advisories across all packages.
func (r *AuditResult) TotalVulnerabilities() int {
	total := 0
	for _, p := range r.Vulnerable {
		total += len(p.Vulnerabilities)
	}
	return total
}

// UniqueAuditPackages turns occurrences into de-duplicated audit queries,
// keeping the first-seen order. Go versions are sent without the +incompatible suffix.
func UniqueAuditPackages(occurrences []PackageOccurrence) []AuditPackage {
	seen := make(map[AuditPackage]bool)
	var result []AuditPackage
	for _, occ := range occurrences {
		pkg := AuditPackage{Name: occ.Name, Version: occ.Version, Lang: occ.FileType.Lang()}
		if pkg.Lang == LangGo {
			pkg.Version = "v" + StripGoVersion(pkg.Version)
		}
		if seen[pkg] {
			continue
		}
		seen[pkg] = true
		result = append(result, pkg)
	}
	return result
}
