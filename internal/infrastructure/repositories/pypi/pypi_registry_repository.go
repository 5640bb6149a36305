package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/httpclient"
)

const (
	registryName    = "pypi"
	defaultIndexURL = "https://pypi.org"
	simpleAccept    = "application/vnd.pypi.simple.v1+json, application/vnd.pypi.simple.v1+html;q=0.9, text/html;q=0.8"
	credentialsHint = "For private PyPI, configure credentials in ~/.netrc or use UV_INDEX_URL with credentials."
)

// PyPIRegistryRepository resolves versions from a PEP 503/691 package index,
// falling back to the legacy JSON API.
type PyPIRegistryRepository struct {
	client   *httpclient.Client
	indexURL string
	policy   entities.PythonPolicy
}

var _ repositories.RegistryRepository = (*PyPIRegistryRepository)(nil)

// NewPyPIRegistryRepository creates a registry for the given index and credentials.
func NewPyPIRegistryRepository(indexURL string, creds httpclient.Credentials) *PyPIRegistryRepository {
	return &PyPIRegistryRepository{
		client:   httpclient.NewClient(httpclient.Options{Credentials: creds}),
		indexURL: NormalizeIndexURL(indexURL),
	}
}

// FromURL creates a registry from an index URL that may embed user:password.
// Without embedded credentials the environment and netrc are consulted.
func FromURL(raw string) *PyPIRegistryRepository {
	clean, creds := httpclient.SplitURLCredentials(raw)
	if creds.IsZero() {
		creds = DetectCredentials(clean)
	}
	return NewPyPIRegistryRepository(clean, creds)
}

// NormalizeIndexURL strips trailing slashes and a trailing /simple segment.
func NormalizeIndexURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	return strings.TrimSuffix(trimmed, "/simple")
}

// NormalizeName applies the index name normalization (lowercase, _ to -).
func NormalizeName(pkg string) string {
	return strings.ReplaceAll(strings.ToLower(pkg), "_", "-")
}

// IndexURL returns the normalized index location.
func (it *PyPIRegistryRepository) IndexURL() string { return it.indexURL }

func (it *PyPIRegistryRepository) Name() string { return registryName }

func (it *PyPIRegistryRepository) GetLatestVersion(ctx context.Context, pkg string) (string, error) {
	versions, err := it.fetchVersions(ctx, pkg, false)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf(
			"package '%s' exists but has no stable versions, only pre-releases are available: %w",
			pkg, entities.ErrNoStableVersion,
		)
	}
	return versions[0], nil
}

func (it *PyPIRegistryRepository) GetLatestVersionIncludingPrereleases(
	ctx context.Context,
	pkg string,
) (string, error) {
	versions, err := it.fetchVersions(ctx, pkg, true)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf(
			"package '%s' has no versions available, all versions may be yanked: %w",
			pkg, entities.ErrPackageNotFound,
		)
	}
	return versions[0], nil
}

func (it *PyPIRegistryRepository) GetLatestVersionMatching(
	ctx context.Context,
	pkg, constraint string,
) (string, error) {
	versions, err := it.fetchVersions(ctx, pkg, false)
	if err != nil {
		return "", err
	}
	for _, v := range versions {
		if it.policy.Satisfies(v, constraint) {
			return v, nil
		}
	}
	return "", fmt.Errorf("no version of '%s' matches constraints '%s': %w", pkg, constraint, entities.ErrNoMatchingVersion)
}

// fetchVersions returns the non-yanked versions of pkg sorted newest first.
func (it *PyPIRegistryRepository) fetchVersions(
	ctx context.Context,
	pkg string,
	includePrereleases bool,
) ([]string, error) {
	normalized := NormalizeName(pkg)

	simpleURL := fmt.Sprintf("%s/simple/%s/", it.indexURL, normalized)
	resp, err := it.client.Get(ctx, simpleURL, map[string]string{"Accept": simpleAccept})
	if err == nil {
		var filenames []string
		if strings.Contains(resp.ContentType, "application/vnd.pypi.simple") && strings.Contains(resp.ContentType, "json") {
			filenames, err = parseSimpleJSON(resp.Body)
		} else {
			filenames = parseSimpleHTML(resp.Body)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse index page for '%s': %w", pkg, err)
		}
		versions := it.collect(versionsFromFilenames(filenames, normalized), includePrereleases)
		if len(versions) == 0 {
			return nil, fmt.Errorf(
				"package '%s' exists but has no suitable versions, all releases may be yanked or pre-release: %w",
				pkg, entities.ErrNoStableVersion,
			)
		}
		return versions, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logger.Debugf("[pypi] simple API failed for %s (%v), trying JSON API", pkg, err)

	var data jsonAPIResponse
	jsonURL := fmt.Sprintf("%s/pypi/%s/json", it.indexURL, normalized)
	if jsonErr := it.client.GetJSON(ctx, jsonURL, nil, &data); jsonErr != nil {
		return nil, httpclient.Describe(jsonErr, "Package", pkg, credentialsHint)
	}
	return it.collect(data.releasedVersions(), includePrereleases), nil
}

func (it *PyPIRegistryRepository) collect(candidates []string, includePrereleases bool) []string {
	seen := make(map[string]bool, len(candidates))
	var versions []string
	for _, v := range candidates {
		if seen[v] || !entities.IsValidPEP440(v) {
			continue
		}
		if !includePrereleases && !it.policy.IsStable(v) {
			continue
		}
		seen[v] = true
		versions = append(versions, v)
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return it.policy.Compare(versions[i], versions[j]) > 0
	})
	return versions
}

type jsonAPIResponse struct {
	Releases map[string][]struct {
		Yanked bool `json:"yanked"`
	} `json:"releases"`
}

// releasedVersions lists releases that still have at least one non-yanked file.
func (r jsonAPIResponse) releasedVersions() []string {
	versions := make([]string, 0, len(r.Releases))
	for version, files := range r.Releases {
		yanked := len(files) > 0
		for _, f := range files {
			if !f.Yanked {
				yanked = false
				break
			}
		}
		if !yanked {
			versions = append(versions, version)
		}
	}
	return versions
}

type simpleJSONResponse struct {
	Files []struct {
		Filename string          `json:"filename"`
		Yanked   json.RawMessage `json:"yanked"`
	} `json:"files"`
}

// parseSimpleJSON returns the non-yanked filenames of a PEP 691 response. The
// yanked field is either false or a reason string.
func parseSimpleJSON(body []byte) ([]string, error) {
	var data simpleJSONResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	filenames := make([]string, 0, len(data.Files))
	for _, f := range data.Files {
		yanked := strings.TrimSpace(string(f.Yanked))
		if yanked != "" && yanked != "false" && yanked != "null" {
			continue
		}
		filenames = append(filenames, f.Filename)
	}
	return filenames, nil
}
