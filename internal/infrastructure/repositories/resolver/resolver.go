package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// Style tells Record how a manifest format reports pinned packages.
type Style int

const (
	// LineOriented formats report a pinned package in Pinned and, when the
	// token changes, in Updated as well.
	LineOriented Style = iota
	// TableStructured formats report a changed pinned package in Pinned only.
	TableStructured
)

// Declaration is one version token an editor wants a target for.
type Declaration struct {
	// Name is used for ignore and pin policy and for reporting.
	Name string
	// Query is the name sent to the registry; empty means Name.
	Query string
	// Current is the declared version without operators or prefixes.
	Current string
	// Constraint is the full requirement passed to matching lookups.
	Constraint string
	// Constrained selects the matching lookup for stable versions.
	Constrained bool
	// Frozen declarations keep their version and are counted unchanged.
	Frozen bool
	Line   int
}

func (d Declaration) query() string {
	if d.Query != "" {
		return d.Query
	}
	return d.Name
}

// Outcome is the resolution of one Declaration.
type Outcome struct {
	Target  string
	Pinned  bool
	Ignored bool
	Err     error
}

type lookupKey struct {
	name       string
	kind       entities.LookupKind
	constraint string
}

type lookupResult struct {
	version string
	err     error
}

// Resolve computes an Outcome for every declaration, in order. Ignore wins
// over everything else and frozen declarations are never pinned; pinned and
// frozen declarations never reach the registry. Registry lookups run concurrently, bounded by opts.Concurrency,
// and identical queries within one call are issued once.
func Resolve(
	ctx context.Context,
	registry repositories.RegistryRepository,
	policy entities.VersionPolicy,
	opts entities.UpdateOptions,
	decls []Declaration,
) []Outcome {
	outcomes := make([]Outcome, len(decls))
	keys := make([]*lookupKey, len(decls))
	var queue []lookupKey
	seen := make(map[lookupKey]bool)

	for i, d := range decls {
		if opts.IsIgnored(d.Name) {
			outcomes[i] = Outcome{Ignored: true}
			continue
		}
		if d.Frozen {
			outcomes[i] = Outcome{Target: d.Current}
			continue
		}
		if pin, ok := opts.Pin(d.Name); ok {
			outcomes[i] = Outcome{Target: pin, Pinned: true}
			continue
		}
		kind := entities.SelectLookup(policy, d.Current, d.Constrained)
		key := lookupKey{name: d.query(), kind: kind}
		if kind == entities.LookupMatching {
			key.constraint = d.Constraint
		}
		keys[i] = &key
		if !seen[key] {
			seen[key] = true
			queue = append(queue, key)
		}
	}

	var mu sync.Mutex
	results := make(map[lookupKey]lookupResult, len(queue))
	group := new(errgroup.Group)
	if opts.Concurrency > 0 {
		group.SetLimit(opts.Concurrency)
	}
	for _, key := range queue {
		group.Go(func() error {
			version, err := Fetch(ctx, registry, key.kind, key.name, key.constraint)
			mu.Lock()
			results[key] = lookupResult{version: version, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	for i, key := range keys {
		if key == nil {
			continue
		}
		res := results[*key]
		outcomes[i] = Outcome{Target: res.version, Err: res.err}
	}
	return outcomes
}

// Fetch issues the registry query for kind.
func Fetch(
	ctx context.Context,
	registry repositories.RegistryRepository,
	kind entities.LookupKind,
	name, constraint string,
) (string, error) {
	switch kind {
	case entities.LookupPrerelease:
		return registry.GetLatestVersionIncludingPrereleases(ctx, name)
	case entities.LookupMatching:
		return registry.GetLatestVersionMatching(ctx, name, constraint)
	case entities.LookupLatest:
		return registry.GetLatestVersion(ctx, name)
	}
	return registry.GetLatestVersion(ctx, name)
}

// Record folds an outcome into result and returns the version token to
// write. changed is false when the declaration must be left alone. A pin
// that changes the token is recorded as configured, even when the written
// token is shortened to the precision of the current version.
func Record(
	result *entities.UpdateResult,
	d Declaration,
	o Outcome,
	opts entities.UpdateOptions,
	style Style,
) (string, bool) {
	switch {
	case o.Ignored:
		result.Ignored = append(result.Ignored, entities.IgnoredPackage{Name: d.Name, Version: d.Current, Line: d.Line})
		return "", false
	case o.Err != nil:
		result.AddError(d.Name, o.Err)
		return "", false
	}

	target := o.Target
	if !opts.FullPrecision {
		target = entities.MatchVersionPrecision(d.Current, target)
	}
	changed := target != d.Current
	change := entities.VersionChange{Name: d.Name, From: d.Current, To: target, Line: d.Line}
	pinned := change
	if changed {
		pinned.To = o.Target
	}

	switch {
	case o.Pinned && style == LineOriented:
		result.Pinned = append(result.Pinned, pinned)
		if changed {
			result.Updated = append(result.Updated, change)
		}
	case o.Pinned && changed:
		result.Pinned = append(result.Pinned, pinned)
	case changed:
		result.Updated = append(result.Updated, change)
	}
	if !changed {
		result.Unchanged++
	}
	return target, changed
}
