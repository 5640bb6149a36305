package pyproject

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/resolver"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/tomlscan"
)

const updaterName = "pyproject"

var (
	versionRe = regexp.MustCompile(
		`^([a-zA-Z0-9][-a-zA-Z0-9._]*)(\[[^\]]+\])?\s*(==|>=|<=|~=|!=|>|<)\s*([^\s,;]+)`,
	)
	constraintRe = regexp.MustCompile(
		`^([a-zA-Z0-9][-a-zA-Z0-9._]*)(\[[^\]]+\])?\s*((?:==|>=|<=|~=|!=|>|<)[^\s;]+(?:\s*,\s*(?:==|>=|<=|~=|!=|>|<)[^\s;,]+)*)`,
	)
)

// PyProjectUpdaterRepository edits PEP 621, PEP 735 and Poetry dependency
// declarations of pyproject.toml files.
//
// Upper-bounded ranges such as ">=2,<3" resolve within their range, but a
// lone "<3" or "<=3" ceiling and a lone "!=1.5" exclusion are kept as
// written. Strings holding escape sequences are never rewritten either.
type PyProjectUpdaterRepository struct{}

var _ repositories.UpdaterRepository = (*PyProjectUpdaterRepository)(nil)

// NewPyProjectUpdaterRepository creates the pyproject.toml editor.
func NewPyProjectUpdaterRepository() *PyProjectUpdaterRepository {
	return &PyProjectUpdaterRepository{}
}

func (it *PyProjectUpdaterRepository) Name() string { return updaterName }

func (it *PyProjectUpdaterRepository) Handles(fileType entities.FileType) bool {
	return fileType == entities.FileTypePyProject
}

// dependency is one version token found in the document. offset is the
// position of the version inside the string value.
type dependency struct {
	name        string
	version     string
	constraint  string
	constrained bool
	frozen      bool
	value       tomlscan.StringValue
	offset      int
}

func (d dependency) declaration() resolver.Declaration {
	return resolver.Declaration{
		Name:        d.name,
		Current:     d.version,
		Constraint:  d.constraint,
		Constrained: d.constrained,
		Frozen:      d.frozen || !d.value.Editable,
		Line:        d.value.Line,
	}
}

func (d dependency) span(version string) fileio.Span {
	start := d.value.Start + d.offset
	return fileio.Span{Start: start, End: start + len(d.version), Text: version}
}

func isSimpleConstraint(constraint string) bool {
	if strings.Contains(constraint, ",") {
		return false
	}
	for _, op := range []string{"<", "~=", "!="} {
		if strings.HasPrefix(constraint, op) {
			return false
		}
	}
	return true
}

// keepsAsWritten reports a lone ceiling or exclusion, which no release can
// move forward without changing what the requirement means.
func keepsAsWritten(constraint string) bool {
	trimmed := strings.TrimSpace(constraint)
	if strings.Contains(trimmed, ",") {
		return false
	}
	return strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "!=")
}

// fromPEP508 reads a "name[extras] op version" requirement string.
func fromPEP508(value tomlscan.StringValue) (dependency, bool) {
	loc := versionRe.FindStringSubmatchIndex(value.Value)
	if loc == nil {
		return dependency{}, false
	}
	constraint := ""
	if caps := constraintRe.FindStringSubmatch(value.Value); caps != nil {
		constraint = caps[3]
	}
	return dependency{
		name:        value.Value[loc[2]:loc[3]],
		version:     value.Value[loc[8]:loc[9]],
		constraint:  constraint,
		constrained: !isSimpleConstraint(constraint),
		frozen:      keepsAsWritten(constraint),
		value:       value,
		offset:      loc[8],
	}, true
}

// fromPoetry reads a Poetry requirement such as "^2.0" or ">=2.0,<3".
func fromPoetry(name string, value tomlscan.StringValue) (dependency, bool) {
	prefix, version, multi := entities.SplitRequirement(value.Value)
	if version == "" {
		return dependency{}, false
	}
	constraint := strings.TrimSpace(value.Value)
	return dependency{
		name:        name,
		version:     version,
		constraint:  constraint,
		constrained: multi || !isSimpleConstraint(prefix),
		frozen:      !multi && keepsAsWritten(prefix),
		value:       value,
		offset:      strings.Index(value.Value, version),
	}, true
}

// isArraySection reports PEP 621 and PEP 735 requirement arrays.
func isArraySection(path []string) bool {
	switch {
	case len(path) == 2 && path[0] == "project" && path[1] == "dependencies":
		return true
	case len(path) == 3 && path[0] == "project" && path[1] == "optional-dependencies":
		return true
	case len(path) == 2 && path[0] == "dependency-groups":
		return true
	}
	return false
}

// poetryTableLength returns how many leading path elements name a Poetry dependency table.
func poetryTableLength(path []string) int {
	if !tomlscan.HasPrefix(path, []string{"tool", "poetry"}) {
		return 0
	}
	switch {
	case len(path) >= 4 && (path[2] == "dependencies" || path[2] == "dev-dependencies"):
		return 3
	case len(path) >= 6 && path[2] == "group" && path[4] == "dependencies":
		return 5
	}
	return 0
}

type poetryEntry struct {
	name    string
	version tomlscan.StringValue
	hasVer  bool
	local   bool
}

func parse(content string) ([]dependency, error) {
	entries, err := tomlscan.Scan(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pyproject.toml: %w", err)
	}

	var deps []dependency
	var order []string
	poetry := make(map[string]*poetryEntry)
	poetryGet := func(key, name string) *poetryEntry {
		if p, ok := poetry[key]; ok {
			return p
		}
		p := &poetryEntry{name: name}
		poetry[key] = p
		order = append(order, key)
		return p
	}

	for _, entry := range entries {
		if isArraySection(entry.Path) && entry.Kind == unstable.Array {
			for _, value := range entry.Strings {
				if dep, ok := fromPEP508(value); ok {
					deps = append(deps, dep)
				}
			}
			continue
		}
		n := poetryTableLength(entry.Path)
		if n == 0 || entry.Path[n] == "python" {
			continue
		}
		key := strings.Join(entry.Path[:n+1], "\x00")
		rest := entry.Path[n+1:]
		switch {
		case len(rest) == 0 && entry.Kind == unstable.String:
			p := poetryGet(key, entry.Path[n])
			p.version, p.hasVer = entry.String, true
		case len(rest) == 0 && entry.Fields != nil:
			p := poetryGet(key, entry.Path[n])
			if v, ok := entry.Fields["version"]; ok {
				p.version, p.hasVer = v, true
			}
			p.local = entry.Keys["path"] || entry.Keys["git"] || entry.Keys["url"]
		case len(rest) == 1:
			p := poetryGet(key, entry.Path[n])
			switch rest[0] {
			case "version":
				p.version, p.hasVer = entry.String, entry.Kind == unstable.String
			case "path", "git", "url":
				p.local = true
			}
		}
	}

	for _, key := range order {
		p := poetry[key]
		if !p.hasVer || p.local {
			continue
		}
		if dep, ok := fromPoetry(p.name, p.version); ok {
			deps = append(deps, dep)
		}
	}
	return deps, nil
}

func (it *PyProjectUpdaterRepository) Update(
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
	outcomes := resolver.Resolve(ctx, registry, entities.PythonPolicy{}, opts, decls)

	var spans []fileio.Span
	for i, outcome := range outcomes {
		if !deps[i].value.Editable {
			logger.Debugf("[pyproject] %s: leaving escaped requirement of %s as written", path, deps[i].name)
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

func (it *PyProjectUpdaterRepository) ParseDependencies(path string) ([]entities.ParsedDependency, error) {
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
			HasUpperBound: dep.constrained,
		})
	}
	return result, nil
}

func (it *PyProjectUpdaterRepository) ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error) {
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
