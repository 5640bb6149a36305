package cargo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/resolver"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/tomlscan"
)

const updaterName = "cargo"

var dependencyTables = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// CargoUpdaterRepository edits the dependency tables of Cargo.toml files.
//
// Multi-clause requirements such as ">=1.2, <2" resolve within their range.
// A lone "<2" or "<=2" ceiling is not treated as a range to resolve in: it is
// kept as written, as are requirement strings holding escape sequences.
type CargoUpdaterRepository struct{}

var _ repositories.UpdaterRepository = (*CargoUpdaterRepository)(nil)

// NewCargoUpdaterRepository creates the Cargo.toml editor.
func NewCargoUpdaterRepository() *CargoUpdaterRepository {
	return &CargoUpdaterRepository{}
}

func (it *CargoUpdaterRepository) Name() string { return updaterName }

func (it *CargoUpdaterRepository) Handles(fileType entities.FileType) bool {
	return fileType == entities.FileTypeCargoToml
}

// dependency is one crate requirement with the location of its version token.
type dependency struct {
	name        string
	crate       string
	prefix      string
	version     string
	requirement string
	multiClause bool
	value       tomlscan.StringValue
}

func (d dependency) hasUpperBound() bool {
	return d.multiClause || strings.HasPrefix(d.prefix, "<")
}

// declaration resolves multi-clause requirements within their range and
// keeps a lone < or <= ceiling, or an escaped string, as written.
func (d dependency) declaration() resolver.Declaration {
	return resolver.Declaration{
		Name:        d.name,
		Query:       d.crate,
		Current:     d.version,
		Constraint:  d.requirement,
		Constrained: d.multiClause,
		Frozen:      !d.value.Editable || (!d.multiClause && strings.HasPrefix(d.prefix, "<")),
		Line:        d.value.Line,
	}
}

// span replaces the first version of the requirement, keeping its operator
// and any further clauses.
func (d dependency) span(version string) fileio.Span {
	offset := d.value.Start + strings.Index(d.value.Value, d.version)
	return fileio.Span{Start: offset, End: offset + len(d.version), Text: version}
}

// tableLength returns how many leading path elements name a dependency table.
func tableLength(path []string) int {
	switch {
	case len(path) >= 2 && isDependencyTable(path[0]):
		return 1
	case len(path) >= 3 && path[0] == "workspace" && path[1] == "dependencies":
		return 2
	case len(path) >= 4 && path[0] == "target" && isDependencyTable(path[2]):
		return 3
	}
	return 0
}

func isDependencyTable(name string) bool {
	return slices.Contains(dependencyTables, name)
}

type pending struct {
	version tomlscan.StringValue
	hasVer  bool
	crate   string
	local   bool
}

// parse lists the registry dependencies of a Cargo.toml document.
func parse(content string) ([]dependency, error) {
	entries, err := tomlscan.Scan(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Cargo.toml: %w", err)
	}

	var order []string
	deps := make(map[string]*pending)
	names := make(map[string]string)
	get := func(key, name string) *pending {
		if p, ok := deps[key]; ok {
			return p
		}
		p := &pending{}
		deps[key] = p
		names[key] = name
		order = append(order, key)
		return p
	}

	for _, entry := range entries {
		n := tableLength(entry.Path)
		if n == 0 {
			continue
		}
		name := entry.Path[n]
		key := strings.Join(entry.Path[:n+1], "\x00")
		rest := entry.Path[n+1:]

		switch {
		case len(rest) == 0 && entry.Kind == unstable.String:
			p := get(key, name)
			p.version, p.hasVer = entry.String, true
		case len(rest) == 0 && entry.Fields != nil:
			p := get(key, name)
			if v, ok := entry.Fields["version"]; ok {
				p.version, p.hasVer = v, true
			}
			if c, ok := entry.Fields["package"]; ok {
				p.crate = c.Value
			}
			p.local = entry.Keys["path"] || entry.Keys["git"]
		case len(rest) == 1:
			p := get(key, name)
			switch rest[0] {
			case "version":
				p.version, p.hasVer = entry.String, entry.String.Value != ""
			case "package":
				p.crate = entry.String.Value
			case "path", "git":
				p.local = true
			}
		}
	}

	var result []dependency
	for _, key := range order {
		p := deps[key]
		if !p.hasVer || p.local {
			continue
		}
		prefix, version, multi := entities.SplitRequirement(p.version.Value)
		if version == "" {
			continue
		}
		crate := p.crate
		if crate == "" {
			crate = names[key]
		}
		result = append(result, dependency{
			name:        names[key],
			crate:       crate,
			prefix:      prefix,
			version:     version,
			requirement: strings.TrimSpace(p.version.Value),
			multiClause: multi,
			value:       p.version,
		})
	}
	return result, nil
}

func (it *CargoUpdaterRepository) Update(
	ctx context.Context,
	path string,
	registry repositories.RegistryRepository,
	opts entities.UpdateOptions,
) (entities.UpdateResult, error) {
	result := entities.UpdateResult{}
	manifest, err := fileio.Read(path)
	if err != nil {
		return result, err
	}
	deps, err := parse(manifest.Content)
	if err != nil {
		return result, err
	}

	decls := make([]resolver.Declaration, len(deps))
	for i, dep := range deps {
		decls[i] = dep.declaration()
	}
	outcomes := resolver.Resolve(ctx, registry, entities.SemverPolicy{}, opts, decls)

	var spans []fileio.Span
	for i, outcome := range outcomes {
		if !deps[i].value.Editable {
			logger.Debugf("[cargo] %s: leaving escaped requirement of %s as written", path, deps[i].name)
		}
		target, changed := resolver.Record(&result, decls[i], outcome, opts, resolver.TableStructured)
		if changed {
			spans = append(spans, deps[i].span(target))
		}
	}
	if len(spans) == 0 || opts.DryRun {
		return result, nil
	}
	return result, write(manifest, spans)
}

func write(manifest *fileio.Manifest, spans []fileio.Span) error {
	content := fileio.ApplySpans(manifest.Content, spans)
	if _, err := tomlscan.Scan(content); err != nil {
		return fmt.Errorf("refusing to write %s: %w", manifest.Path, err)
	}
	return manifest.Write(content)
}

func (it *CargoUpdaterRepository) ParseDependencies(path string) ([]entities.ParsedDependency, error) {
	manifest, err := fileio.Read(path)
	if err != nil {
		return nil, err
	}
	deps, err := parse(manifest.Content)
	if err != nil {
		return nil, err
	}
	result := make([]entities.ParsedDependency, 0, len(deps))
	for _, dep := range deps {
		result = append(result, entities.ParsedDependency{
			Name:          dep.name,
			Version:       dep.version,
			Line:          dep.value.Line,
			HasUpperBound: dep.hasUpperBound(),
		})
	}
	return result, nil
}

func (it *CargoUpdaterRepository) ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error) {
	manifest, err := fileio.Read(path)
	if err != nil {
		return 0, err
	}
	deps, err := parse(manifest.Content)
	if err != nil {
		return 0, err
	}
	var spans []fileio.Span
	used := make(map[int]bool)
	for _, rw := range rewrites {
		for i, dep := range deps {
			if used[i] || !dep.value.Editable || !strings.EqualFold(dep.name, rw.Name) || dep.version != rw.From {
				continue
			}
			if rw.Line != 0 && rw.Line != dep.value.Line {
				continue
			}
			used[i] = true
			spans = append(spans, dep.span(rw.To))
			break
		}
	}
	if len(spans) == 0 {
		return 0, nil
	}
	if err = write(manifest, spans); err != nil {
		return 0, err
	}
	return len(spans), nil
}
