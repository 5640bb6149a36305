package npm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/httpclient"
)

const (
	registryName       = "npm"
	defaultRegistryURL = "https://registry.npmjs.org"
	abbreviatedAccept  = "application/vnd.npm.install-v1+json"
)

// NpmRegistryRepository resolves versions from an npm registry using the
// abbreviated package metadata document.
type NpmRegistryRepository struct {
	client      *httpclient.Client
	registryURL string
}

var _ repositories.RegistryRepository = (*NpmRegistryRepository)(nil)

// NewNpmRegistryRepository creates a registry client for the given base URL.
func NewNpmRegistryRepository(registryURL string, creds httpclient.Credentials) *NpmRegistryRepository {
	return &NpmRegistryRepository{
		client: httpclient.NewClient(httpclient.Options{
			Headers:     map[string]string{"Accept": abbreviatedAccept},
			Credentials: creds,
		}),
		registryURL: strings.TrimRight(registryURL, "/"),
	}
}

// NewFromSettings builds the npm registry from configuration, NPM_REGISTRY and NPM_TOKEN.
func NewFromSettings(settings entities.RegistrySettings) *NpmRegistryRepository {
	registryURL := settings.URL
	if registryURL == "" {
		registryURL = httpclient.FirstEnv("NPM_REGISTRY", "NPM_CONFIG_REGISTRY")
	}
	if registryURL == "" {
		registryURL = defaultRegistryURL
	}
	token := settings.Token
	if token == "" {
		token = httpclient.FirstEnv("NPM_TOKEN")
	}
	return NewNpmRegistryRepository(registryURL, httpclient.Credentials{
		Token:    token,
		Username: settings.Username,
		Password: settings.Password,
	})
}

func (it *NpmRegistryRepository) Name() string { return registryName }

type abbreviatedDocument struct {
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Versions map[string]any `json:"versions"`
}

type parsedVersion struct {
	raw     string
	version *semver.Version
}

// EscapeName escapes the slash of a scoped package (@scope/name -> @scope%2fname).
func EscapeName(pkg string) string {
	if strings.HasPrefix(pkg, "@") {
		return strings.Replace(pkg, "/", "%2f", 1)
	}
	return pkg
}

func (it *NpmRegistryRepository) fetch(ctx context.Context, pkg string) (*abbreviatedDocument, error) {
	var doc abbreviatedDocument
	url := fmt.Sprintf("%s/%s", it.registryURL, EscapeName(pkg))
	if err := it.client.GetJSON(ctx, url, nil, &doc); err != nil {
		return nil, httpclient.Describe(err, "Package", pkg, "Set NPM_TOKEN or configure [registries.npm] token.")
	}
	return &doc, nil
}

// sortedVersions returns the parseable versions newest first.
func (doc *abbreviatedDocument) sortedVersions(includePrereleases bool) []parsedVersion {
	versions := make([]parsedVersion, 0, len(doc.Versions))
	for raw := range doc.Versions {
		v, err := semver.StrictNewVersion(raw)
		if err != nil {
			continue
		}
		if !includePrereleases && v.Prerelease() != "" {
			continue
		}
		versions = append(versions, parsedVersion{raw: raw, version: v})
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].version.GreaterThan(versions[j].version)
	})
	return versions
}

func (it *NpmRegistryRepository) GetLatestVersion(ctx context.Context, pkg string) (string, error) {
	doc, err := it.fetch(ctx, pkg)
	if err != nil {
		return "", err
	}
	if latest := doc.DistTags.Latest; latest != "" {
		if v, parseErr := semver.StrictNewVersion(latest); parseErr == nil && v.Prerelease() == "" {
			return latest, nil
		}
	}
	versions := doc.sortedVersions(false)
	if len(versions) == 0 {
		return "", fmt.Errorf("no stable versions found for package '%s': %w", pkg, entities.ErrNoStableVersion)
	}
	return versions[0].raw, nil
}

func (it *NpmRegistryRepository) GetLatestVersionIncludingPrereleases(
	ctx context.Context,
	pkg string,
) (string, error) {
	doc, err := it.fetch(ctx, pkg)
	if err != nil {
		return "", err
	}
	versions := doc.sortedVersions(true)
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions found for package '%s': %w", pkg, entities.ErrPackageNotFound)
	}
	return versions[0].raw, nil
}

func (it *NpmRegistryRepository) GetLatestVersionMatching(
	ctx context.Context,
	pkg, constraint string,
) (string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("failed to parse version constraints '%s': %w", constraint, err)
	}
	doc, err := it.fetch(ctx, pkg)
	if err != nil {
		return "", err
	}
	for _, v := range doc.sortedVersions(false) {
		if c.Check(v.version) {
			return v.raw, nil
		}
	}
	return "", fmt.Errorf("no version of '%s' matches constraints '%s': %w", pkg, constraint, entities.ErrNoMatchingVersion)
}
