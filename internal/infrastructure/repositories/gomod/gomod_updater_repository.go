package gomod

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/resolver"
)

const (
	updaterName        = "go.mod"
	incompatibleSuffix = "+incompatible"
)

// GoModUpdaterRepository edits the require directives of go.mod files.
type GoModUpdaterRepository struct{}

var _ repositories.UpdaterRepository = (*GoModUpdaterRepository)(nil)

// NewGoModUpdaterRepository creates the go.mod editor.
func NewGoModUpdaterRepository() *GoModUpdaterRepository {
	return &GoModUpdaterRepository{}
}

func (it *GoModUpdaterRepository) Name() string { return updaterName }

func (it *GoModUpdaterRepository) Handles(fileType entities.FileType) bool {
	return fileType == entities.FileTypeGoMod
}

type requirement struct {
	path    string
	version string
	line    int
	// frozen requirements are replaced modules or pseudo-versions.
	frozen bool
}

func parse(path, content string) ([]requirement, error) {
	file, err := modfile.Parse(path, []byte(content), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	replaced := make(map[string]bool, len(file.Replace))
	for _, r := range file.Replace {
		replaced[r.Old.Path] = true
	}
	reqs := make([]requirement, 0, len(file.Require))
	for _, r := range file.Require {
		line := 0
		if r.Syntax != nil {
			line = r.Syntax.Start.Line
		}
		reqs = append(reqs, requirement{
			path:    r.Mod.Path,
			version: r.Mod.Version,
			line:    line,
			frozen:  replaced[r.Mod.Path] || module.IsPseudoVersion(r.Mod.Version),
		})
	}
	return reqs, nil
}

// normalize gives a resolved or pinned version the shape of the current one:
// a leading v and the +incompatible suffix when the current version has it.
func normalize(current, target string) string {
	if target == "" {
		return target
	}
	if !strings.HasPrefix(target, "v") {
		target = "v" + target
	}
	if strings.HasSuffix(current, incompatibleSuffix) && !strings.HasSuffix(target, incompatibleSuffix) &&
		!strings.Contains(target, "+") {
		target += incompatibleSuffix
	}
	return target
}

// rewriteLine replaces the version that follows modulePath on line.
func rewriteLine(line, modulePath, from, to string) (string, bool) {
	idx := strings.Index(line, modulePath)
	if idx < 0 {
		return line, false
	}
	after := idx + len(modulePath)
	pos := strings.Index(line[after:], from)
	if pos < 0 {
		return line, false
	}
	start := after + pos
	return line[:start] + to + line[start+len(from):], true
}

func (it *GoModUpdaterRepository) Update(
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
	reqs, err := parse(path, manifest.Content)
	if err != nil {
		return result, err
	}

	decls := make([]resolver.Declaration, len(reqs))
	for i, req := range reqs {
		decls[i] = resolver.Declaration{
			Name:    req.path,
			Current: req.version,
			Frozen:  req.frozen,
			Line:    req.line,
		}
	}
	outcomes := resolver.Resolve(ctx, registry, entities.GoPolicy{}, opts, decls)

	lines := fileio.SplitLines(manifest.Content)
	modified := false
	for i, outcome := range outcomes {
		req := reqs[i]
		outcome.Target = normalize(req.version, outcome.Target)
		target, changed := resolver.Record(&result, decls[i], outcome, opts, resolver.LineOriented)
		if !changed || req.line < 1 || req.line > len(lines) {
			continue
		}
		if text, ok := rewriteLine(lines[req.line-1].Text, req.path, req.version, target); ok {
			lines[req.line-1].Text = text
			modified = true
		}
	}

	if modified && !opts.DryRun {
		content := fileio.JoinLines(lines)
		if _, err = modfile.Parse(path, []byte(content), nil); err != nil {
			return result, fmt.Errorf("refusing to write %s: %w", path, err)
		}
		if err = manifest.Write(content); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (it *GoModUpdaterRepository) ParseDependencies(path string) ([]entities.ParsedDependency, error) {
	manifest, err := fileio.Read(path)
	if err != nil {
		return nil, err
	}
	reqs, err := parse(path, manifest.Content)
	if err != nil {
		return nil, err
	}
	deps := make([]entities.ParsedDependency, 0, len(reqs))
	for _, req := range reqs {
		deps = append(deps, entities.ParsedDependency{
			Name:          req.path,
			Version:       req.version,
			Line:          req.line,
			HasUpperBound: req.frozen,
		})
	}
	return deps, nil
}

func (it *GoModUpdaterRepository) ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error) {
	manifest, err := fileio.Read(path)
	if err != nil {
		return 0, err
	}
	reqs, err := parse(path, manifest.Content)
	if err != nil {
		return 0, err
	}
	lines := fileio.SplitLines(manifest.Content)
	applied := 0
	for _, rw := range rewrites {
		for _, req := range reqs {
			if req.frozen || req.path != rw.Name || req.version != rw.From || req.line < 1 || req.line > len(lines) {
				continue
			}
			if rw.Line != 0 && rw.Line != req.line {
				continue
			}
			if text, ok := rewriteLine(lines[req.line-1].Text, req.path, req.version, normalize(req.version, rw.To)); ok {
				lines[req.line-1].Text = text
				applied++
			}
			break
		}
	}
	if applied > 0 {
		if err = manifest.Write(fileio.JoinLines(lines)); err != nil {
			return 0, err
		}
	}
	return applied, nil
}
