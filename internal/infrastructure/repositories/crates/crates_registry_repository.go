package crates

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
	registryName       = "crates.io"
	defaultRegistryURL = "https://crates.io/api/v1/crates"
	crateRegistryName  = "crates-io"
)

// CratesRegistryRepository resolves crate versions from the crates.io web API.
type CratesRegistryRepository struct {
	client      *httpclient.Client
	registryURL string
}

var _ repositories.RegistryRepository = (*CratesRegistryRepository)(nil)

// NewCratesRegistryRepository creates a client for the crates API rooted at
// registryURL. The token is sent verbatim in the Authorization header.
func NewCratesRegistryRepository(registryURL, token string) *CratesRegistryRepository {
	headers := map[string]string{"Accept": "application/json"}
	if token != "" {
		headers["Authorization"] = token
	}
	return &CratesRegistryRepository{
		client: httpclient.NewClient(httpclient.Options{
			Headers:   headers,
			RateLimit: 10,
			Burst:     10,
		}),
		registryURL: strings.TrimRight(registryURL, "/"),
	}
}

// NewFromSettings builds the crates registry from configuration, environment and cargo credentials.
func NewFromSettings(settings entities.RegistrySettings) *CratesRegistryRepository {
	registryURL := settings.URL
	if registryURL == "" {
		registryURL = defaultRegistryURL
	}
	token := settings.Token
	if token == "" {
		token = DetectToken(crateRegistryName)
	}
	return NewCratesRegistryRepository(registryURL, token)
}

func (it *CratesRegistryRepository) Name() string { return registryName }

type crateDocument struct {
	Crate struct {
		MaxStableVersion string `json:"max_stable_version"`
	} `json:"crate"`
	Versions []struct {
		Num    string `json:"num"`
		Yanked bool   `json:"yanked"`
	} `json:"versions"`
}

type parsedVersion struct {
	raw     string
	version *semver.Version
}

func (it *CratesRegistryRepository) fetch(ctx context.Context, name string) (*crateDocument, error) {
	var doc crateDocument
	if err := it.client.GetJSON(ctx, fmt.Sprintf("%s/%s", it.registryURL, name), nil, &doc); err != nil {
		return nil, httpclient.Describe(err, "Crate", name, "Set CARGO_REGISTRY_TOKEN or add it to ~/.cargo/credentials.toml.")
	}
	return &doc, nil
}

func (doc *crateDocument) sortedVersions(includePrereleases bool) []parsedVersion {
	versions := make([]parsedVersion, 0, len(doc.Versions))
	for _, v := range doc.Versions {
		if v.Yanked {
			continue
		}
		parsed, err := semver.StrictNewVersion(v.Num)
		if err != nil {
			continue
		}
		if !includePrereleases && parsed.Prerelease() != "" {
			continue
		}
		versions = append(versions, parsedVersion{raw: v.Num, version: parsed})
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].version.GreaterThan(versions[j].version)
	})
	return versions
}

func (it *CratesRegistryRepository) GetLatestVersion(ctx context.Context, name string) (string, error) {
	doc, err := it.fetch(ctx, name)
	if err != nil {
		return "", err
	}
	if doc.Crate.MaxStableVersion != "" {
		return doc.Crate.MaxStableVersion, nil
	}
	versions := doc.sortedVersions(false)
	if len(versions) == 0 {
		return "", fmt.Errorf("no stable versions found for crate '%s': %w", name, entities.ErrNoStableVersion)
	}
	return versions[0].raw, nil
}

func (it *CratesRegistryRepository) GetLatestVersionIncludingPrereleases(
	ctx context.Context,
	name string,
) (string, error) {
	doc, err := it.fetch(ctx, name)
	if err != nil {
		return "", err
	}
	versions := doc.sortedVersions(true)
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions found for crate '%s': %w", name, entities.ErrPackageNotFound)
	}
	return versions[0].raw, nil
}

func (it *CratesRegistryRepository) GetLatestVersionMatching(
	ctx context.Context,
	name, constraint string,
) (string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("failed to parse version constraints '%s': %w", constraint, err)
	}
	doc, err := it.fetch(ctx, name)
	if err != nil {
		return "", err
	}
	for _, v := range doc.sortedVersions(false) {
		if c.Check(v.version) {
			return v.raw, nil
		}
	}
	return "", fmt.Errorf("no version of '%s' matches constraints '%s': %w", name, constraint, entities.ErrNoMatchingVersion)
}
