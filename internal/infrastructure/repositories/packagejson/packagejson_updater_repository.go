package packagejson

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/resolver"
)

const updaterName = "package.json"

var (
	dependencySections = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}
	// versionPrefixes is ordered so that two character operators match first.
	versionPrefixes = []string{">=", "<=", "~>", "^", "~", ">", "<", "=", "v"}
	// skippedPrefixes mark specifiers that do not come from the registry.
	skippedPrefixes = []string{"git", "http", "file:", "link:", "workspace:", "npm:"}
)

// PackageJSONUpdaterRepository edits the dependency sections of package.json files.
//
// A "<2.0.0" or "<=2.0.0" ceiling is kept as written instead of resolving
// the newest version below it, as are specifiers holding JSON escapes.
type PackageJSONUpdaterRepository struct{}

var _ repositories.UpdaterRepository = (*PackageJSONUpdaterRepository)(nil)

// NewPackageJSONUpdaterRepository creates the package.json editor.
func NewPackageJSONUpdaterRepository() *PackageJSONUpdaterRepository {
	return &PackageJSONUpdaterRepository{}
}

func (it *PackageJSONUpdaterRepository) Name() string { return updaterName }

func (it *PackageJSONUpdaterRepository) Handles(fileType entities.FileType) bool {
	return fileType == entities.FileTypePackageJSON
}

type dependency struct {
	member
	prefix  string
	version string
}

func (d dependency) hasUpperBound() bool {
	return strings.HasPrefix(d.prefix, "<")
}

// declaration keeps a lone < or <= ceiling, or an escaped specifier, as written.
func (d dependency) declaration() resolver.Declaration {
	return resolver.Declaration{
		Name:       d.name,
		Current:    d.version,
		Constraint: d.value,
		Frozen:     d.hasUpperBound() || !d.editable,
		Line:       d.line,
	}
}

func (d dependency) span(version string) fileio.Span {
	start := d.start + len(d.prefix)
	return fileio.Span{Start: start, End: start + len(d.version), Text: version}
}

// splitSpecifier returns the operator prefix and the version of a plain
// specifier. ok is false for anything that is not a registry version.
func splitSpecifier(spec string) (string, string, bool) {
	if spec == "*" || spec == "latest" || strings.Contains(spec, "/") {
		return "", "", false
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(spec, prefix) {
			return "", "", false
		}
	}
	prefix := ""
	for _, candidate := range versionPrefixes {
		if strings.HasPrefix(spec, candidate) {
			prefix = candidate
			break
		}
	}
	version := spec[len(prefix):]
	if _, err := semver.StrictNewVersion(version); err != nil {
		return "", "", false
	}
	return prefix, version, true
}

func parse(content string) ([]dependency, error) {
	members, err := scanSections(content, dependencySections)
	if err != nil {
		return nil, err
	}
	deps := make([]dependency, 0, len(members))
	for _, m := range members {
		prefix, version, ok := splitSpecifier(m.value)
		if !ok {
			continue
		}
		deps = append(deps, dependency{member: m, prefix: prefix, version: version})
	}
	return deps, nil
}

func (it *PackageJSONUpdaterRepository) Update(
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
		if !deps[i].editable {
			logger.Debugf("[package.json] %s: leaving escaped specifier of %s as written", path, deps[i].name)
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
	if _, err := scanSections(content, dependencySections); err != nil {
		return err
	}
	return manifest.Write(content)
}

func (it *PackageJSONUpdaterRepository) ParseDependencies(path string) ([]entities.ParsedDependency, error) {
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
			Line:          dep.line,
			HasUpperBound: dep.hasUpperBound(),
		})
	}
	return result, nil
}

func (it *PackageJSONUpdaterRepository) ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error) {
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
			if used[i] || !dep.editable || !strings.EqualFold(dep.name, rw.Name) || dep.version != rw.From {
				continue
			}
			if rw.Line != 0 && rw.Line != dep.line {
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
