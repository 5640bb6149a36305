//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// OccurrenceBuilder helps create package occurrences with a fluent interface.
type OccurrenceBuilder struct {
	*testkit.BaseBuilder
	name          string
	version       string
	line          int
	hasUpperBound bool
	filePath      string
	fileType      entities.FileType
}

// NewOccurrenceBuilder creates a new occurrence builder with sensible defaults.
func NewOccurrenceBuilder() *OccurrenceBuilder {
	return &OccurrenceBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "requests",
		version:     "2.31.0",
		line:        1,
		filePath:    "requirements.txt",
		fileType:    entities.FileTypeRequirements,
	}
}

// WithName sets the package name.
func (b *OccurrenceBuilder) WithName(name string) *OccurrenceBuilder {
	b.name = name
	return b
}

// WithVersion sets the declared version.
func (b *OccurrenceBuilder) WithVersion(version string) *OccurrenceBuilder {
	b.version = version
	return b
}

// WithLine sets the line number.
func (b *OccurrenceBuilder) WithLine(line int) *OccurrenceBuilder {
	b.line = line
	return b
}

// WithUpperBound marks the declaration as constrained.
func (b *OccurrenceBuilder) WithUpperBound() *OccurrenceBuilder {
	b.hasUpperBound = true
	return b
}

// InFile sets the file path and format.
func (b *OccurrenceBuilder) InFile(path string, fileType entities.FileType) *OccurrenceBuilder {
	b.filePath = path
	b.fileType = fileType
	return b
}

// Build creates the occurrence (satisfies testkit.Builder interface).
func (b *OccurrenceBuilder) Build() interface{} {
	return b.BuildOccurrence()
}

// BuildOccurrence creates the occurrence with a concrete return type.
func (b *OccurrenceBuilder) BuildOccurrence() entities.PackageOccurrence {
	return entities.PackageOccurrence{
		ParsedDependency: b.BuildParsed(),
		FilePath:         b.filePath,
		FileType:         b.fileType,
	}
}

// BuildParsed creates only the parsed declaration part.
func (b *OccurrenceBuilder) BuildParsed() entities.ParsedDependency {
	return entities.ParsedDependency{
		Name:          b.name,
		Version:       b.version,
		Line:          b.line,
		HasUpperBound: b.hasUpperBound,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *OccurrenceBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "requests"
	b.version = "2.31.0"
	b.line = 1
	b.hasUpperBound = false
	b.filePath = "requirements.txt"
	b.fileType = entities.FileTypeRequirements
	return b
}

// Clone creates a deep copy of the OccurrenceBuilder.
func (b *OccurrenceBuilder) Clone() testkit.Builder {
	return &OccurrenceBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:          b.name,
		version:       b.version,
		line:          b.line,
		hasUpperBound: b.hasUpperBound,
		filePath:      b.filePath,
		fileType:      b.fileType,
	}
}
