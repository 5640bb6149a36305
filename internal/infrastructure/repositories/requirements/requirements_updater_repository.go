package requirements

import (
	"context"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/pypi"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/resolver"
)

const updaterName = "requirements"

var (
	// packageRe captures the first version of a requirement line in group 4.
	packageRe = regexp.MustCompile(
		`^([a-zA-Z0-9][-a-zA-Z0-9._]*)(\[[^\]]+\])?\s*(==|>=|<=|~=|!=|>|<)\s*([^\s,;#]+)`,
	)
	// constraintRe captures the whole comma separated specifier set in group 3.
	constraintRe = regexp.MustCompile(
		`^([a-zA-Z0-9][-a-zA-Z0-9._]*)(\[[^\]]+\])?\s*((?:==|>=|<=|~=|!=|>|<)[^\s#;]+(?:\s*,\s*(?:==|>=|<=|~=|!=|>|<)[^\s#;,]+)*)`,
	)
)

// RequirementsUpdaterRepository edits pip requirement files line by line.
// Lone "<" and "<=" ceilings and lone "!=" exclusions are left as written.
type RequirementsUpdaterRepository struct{}

var _ repositories.UpdaterRepository = (*RequirementsUpdaterRepository)(nil)

// NewRequirementsUpdaterRepository creates the requirements editor.
func NewRequirementsUpdaterRepository() *RequirementsUpdaterRepository {
	return &RequirementsUpdaterRepository{}
}

func (it *RequirementsUpdaterRepository) Name() string { return updaterName }

func (it *RequirementsUpdaterRepository) Handles(fileType entities.FileType) bool {
	return fileType == entities.FileTypeRequirements
}

type requirement struct {
	name       string
	extras     string
	version    string
	constraint string
	// versionStart and versionEnd locate the first version inside the line.
	versionStart int
	versionEnd   int
}

func parseLine(line string) (requirement, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
		return requirement{}, false
	}
	code := line
	if idx := strings.IndexByte(code, '#'); idx >= 0 {
		code = code[:idx]
	}
	caps := constraintRe.FindStringSubmatch(code)
	if caps == nil {
		return requirement{}, false
	}
	req := requirement{name: caps[1], extras: caps[2], constraint: caps[3]}
	if loc := packageRe.FindStringSubmatchIndex(code); loc != nil {
		req.versionStart, req.versionEnd = loc[8], loc[9]
		req.version = code[loc[8]:loc[9]]
	}
	return req, true
}

// isSimpleConstraint reports whether a plain latest lookup applies.
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

// keepsAsWritten reports a lone < or <= ceiling or a lone != exclusion. A
// newer release cannot move either forward without changing its meaning.
func keepsAsWritten(constraint string) bool {
	trimmed := strings.TrimSpace(constraint)
	if strings.Contains(trimmed, ",") {
		return false
	}
	return strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "!=")
}

func (r requirement) replaceVersion(line, version string) string {
	if r.versionEnd == 0 {
		return line
	}
	return line[:r.versionStart] + version + line[r.versionEnd:]
}

// indexOption returns the value of an option line such as "--index-url URL"
// or "--index-url=URL".
func indexOption(line string, names ...string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, name := range names {
		rest, ok := strings.CutPrefix(trimmed, name)
		if !ok {
			continue
		}
		if value, found := strings.CutPrefix(rest, "="); found {
			return strings.TrimSpace(value), strings.TrimSpace(value) != ""
		}
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		if fields := strings.Fields(rest); len(fields) > 0 && !strings.HasPrefix(fields[0], "-") {
			return fields[0], true
		}
	}
	return "", false
}

// extractIndexURLs collects the last primary index and every extra index of the file.
func extractIndexURLs(lines []fileio.Line) (string, []string) {
	var primary string
	var extras []string
	for _, line := range lines {
		if url, ok := indexOption(line.Text, "--index-url", "-i"); ok {
			primary = url
		}
		if url, ok := indexOption(line.Text, "--extra-index-url"); ok {
			extras = append(extras, url)
		}
	}
	return primary, extras
}

func (it *RequirementsUpdaterRepository) Update(
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
	lines := fileio.SplitLines(manifest.Content)

	if primary, extras := extractIndexURLs(lines); primary != "" {
		logger.Debugf("[requirements] %s uses its own index %s", path, primary)
		registry = pypi.FromPrimaryAndExtras(primary, extras)
	}

	var decls []resolver.Declaration
	var indexes []int
	var parsed []requirement
	for idx, line := range lines {
		req, ok := parseLine(line.Text)
		if !ok {
			continue
		}
		decls = append(decls, resolver.Declaration{
			Name:        req.name,
			Current:     req.version,
			Constraint:  req.constraint,
			Constrained: !isSimpleConstraint(req.constraint),
			Frozen:      keepsAsWritten(req.constraint),
			Line:        idx + 1,
		})
		indexes = append(indexes, idx)
		parsed = append(parsed, req)
	}

	outcomes := resolver.Resolve(ctx, registry, entities.PythonPolicy{}, opts, decls)
	modified := false
	for i, outcome := range outcomes {
		target, changed := resolver.Record(&result, decls[i], outcome, opts, resolver.LineOriented)
		if !changed {
			continue
		}
		idx := indexes[i]
		lines[idx].Text = parsed[i].replaceVersion(lines[idx].Text, target)
		modified = true
	}

	if modified && !opts.DryRun {
		if err = manifest.Write(fileio.JoinLines(lines)); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (it *RequirementsUpdaterRepository) ParseDependencies(path string) ([]entities.ParsedDependency, error) {
	manifest, err := fileio.Read(path)
	if err != nil {
		return nil, err
	}
	var deps []entities.ParsedDependency
	for idx, line := range fileio.SplitLines(manifest.Content) {
		req, ok := parseLine(line.Text)
		if !ok {
			continue
		}
		deps = append(deps, entities.ParsedDependency{
			Name:          req.name,
			Version:       req.version,
			Line:          idx + 1,
			HasUpperBound: !isSimpleConstraint(req.constraint),
		})
	}
	return deps, nil
}

func (it *RequirementsUpdaterRepository) ApplyRewrites(path string, rewrites []entities.VersionRewrite) (int, error) {
	manifest, err := fileio.Read(path)
	if err != nil {
		return 0, err
	}
	lines := fileio.SplitLines(manifest.Content)
	applied := 0
	for _, rw := range rewrites {
		if rw.Line < 1 || rw.Line > len(lines) {
			continue
		}
		line := &lines[rw.Line-1]
		req, ok := parseLine(line.Text)
		if !ok || !strings.EqualFold(req.name, rw.Name) || req.version != rw.From {
			continue
		}
		line.Text = req.replaceVersion(line.Text, rw.To)
		applied++
	}
	if applied > 0 {
		if err = manifest.Write(fileio.JoinLines(lines)); err != nil {
			return 0, err
		}
	}
	return applied, nil
}
