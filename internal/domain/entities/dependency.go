package entities

// ParsedDependency is one dependency declaration read from a manifest.
type ParsedDependency struct {
	Name    string
	Version string
	// Line is 1-based; zero means the position is unknown.
	Line int
	// HasUpperBound is set when the declared constraint caps the version
	// (leading <, <=, ~= or != operator, or several comma separated clauses).
	HasUpperBound bool
}

// PackageOccurrence is a ParsedDependency tagged with the file it came from.
type PackageOccurrence struct {
	ParsedDependency
	FilePath string
	FileType FileType
}

// VersionRewrite asks an editor to replace the version token of one declaration.
type VersionRewrite struct {
	Name string
	Line int
	From string
	To   string
}
