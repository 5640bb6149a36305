//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// UpdateResultBuilder assembles an UpdateResult entry by entry.
type UpdateResultBuilder struct {
	*testkit.BaseBuilder
	result entities.UpdateResult
}

// NewUpdateResultBuilder creates an empty result builder.
func NewUpdateResultBuilder() *UpdateResultBuilder {
	return &UpdateResultBuilder{BaseBuilder: testkit.NewBaseBuilder()}
}

// WithUpdate adds an updated package.
func (b *UpdateResultBuilder) WithUpdate(name, from, to string, line int) *UpdateResultBuilder {
	b.result.Updated = append(b.result.Updated, entities.VersionChange{Name: name, From: from, To: to, Line: line})
	return b
}

// WithPin adds a pinned package.
func (b *UpdateResultBuilder) WithPin(name, from, to string, line int) *UpdateResultBuilder {
	b.result.Pinned = append(b.result.Pinned, entities.VersionChange{Name: name, From: from, To: to, Line: line})
	return b
}

// WithIgnored adds an ignored package.
func (b *UpdateResultBuilder) WithIgnored(name, version string, line int) *UpdateResultBuilder {
	b.result.Ignored = append(b.result.Ignored, entities.IgnoredPackage{Name: name, Version: version, Line: line})
	return b
}

// WithUnchanged sets the unchanged counter.
func (b *UpdateResultBuilder) WithUnchanged(count int) *UpdateResultBuilder {
	b.result.Unchanged = count
	return b
}

// WithError adds a per-package error message.
func (b *UpdateResultBuilder) WithError(message string) *UpdateResultBuilder {
	b.result.Errors = append(b.result.Errors, message)
	return b
}

// Build creates the result (satisfies testkit.Builder interface).
func (b *UpdateResultBuilder) Build() interface{} {
	return b.BuildResult()
}

// BuildResult creates the result with a concrete return type.
func (b *UpdateResultBuilder) BuildResult() entities.UpdateResult {
	return b.result
}

// Reset clears the builder state, allowing it to be reused.
func (b *UpdateResultBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.result = entities.UpdateResult{}
	return b
}

// Clone creates a copy of the UpdateResultBuilder.
func (b *UpdateResultBuilder) Clone() testkit.Builder {
	clone := &UpdateResultBuilder{BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder)}
	clone.result.Merge(b.result)
	return clone
}
