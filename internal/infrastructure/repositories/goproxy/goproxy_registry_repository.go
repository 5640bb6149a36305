package goproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/mod/module"
	modsemver "golang.org/x/mod/semver"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/httpclient"
)

const (
	registryName    = "go-proxy"
	defaultProxyURL = "https://proxy.golang.org"
	credentialsHint = "For private modules, configure credentials in ~/.netrc or set GOPRIVATE."
)

// GoProxyRegistryRepository resolves module versions through the GOPROXY protocol.
type GoProxyRegistryRepository struct {
	client   *httpclient.Client
	proxyURL string
	private  string
}

var _ repositories.RegistryRepository = (*GoProxyRegistryRepository)(nil)

// NewGoProxyRegistryRepository creates a proxy client. private is a
// comma-separated GOPRIVATE style pattern list naming modules the proxy must not serve.
func NewGoProxyRegistryRepository(proxyURL, private string, creds httpclient.Credentials) *GoProxyRegistryRepository {
	return &GoProxyRegistryRepository{
		client:   httpclient.NewClient(httpclient.Options{Credentials: creds}),
		proxyURL: strings.TrimRight(proxyURL, "/"),
		private:  private,
	}
}

// NewFromSettings builds the proxy from configuration and the Go environment.
func NewFromSettings(settings entities.RegistrySettings) *GoProxyRegistryRepository {
	proxyURL := settings.URL
	if proxyURL == "" {
		proxyURL = DetectProxyURL()
	}
	creds := httpclient.Credentials{
		Token:    settings.Token,
		Username: settings.Username,
		Password: settings.Password,
	}
	if creds.IsZero() {
		creds = DetectCredentials(proxyURL)
	}
	return NewGoProxyRegistryRepository(proxyURL, PrivatePatterns(), creds)
}

// DetectProxyURL returns the first GOPROXY entry that is neither direct nor off.
func DetectProxyURL() string {
	for _, entry := range strings.FieldsFunc(httpclient.FirstEnv("GOPROXY"), func(r rune) bool {
		return r == ',' || r == '|'
	}) {
		entry = strings.TrimSpace(entry)
		if entry != "" && entry != "direct" && entry != "off" {
			return entry
		}
	}
	return defaultProxyURL
}

// PrivatePatterns joins GOPRIVATE and GONOPROXY into a single pattern list.
func PrivatePatterns() string {
	var patterns []string
	for _, name := range []string{"GOPRIVATE", "GONOPROXY"} {
		if v := httpclient.FirstEnv(name); v != "" {
			patterns = append(patterns, v)
		}
	}
	return strings.Join(patterns, ",")
}

// DetectCredentials reads GOPROXY_USERNAME/GOPROXY_PASSWORD, then netrc for the proxy host.
func DetectCredentials(proxyURL string) httpclient.Credentials {
	username := httpclient.FirstEnv("GOPROXY_USERNAME")
	password := httpclient.FirstEnv("GOPROXY_PASSWORD")
	if username != "" && password != "" {
		return httpclient.Credentials{Username: username, Password: password}
	}
	if creds, ok := httpclient.NetrcCredentials(httpclient.HostOf(proxyURL)); ok {
		return creds
	}
	return httpclient.Credentials{}
}

func (it *GoProxyRegistryRepository) Name() string { return registryName }

// IsPrivate reports whether modulePath bypasses the proxy.
func (it *GoProxyRegistryRepository) IsPrivate(modulePath string) bool {
	return it.private != "" && module.MatchPrefixPatterns(it.private, modulePath)
}

func (it *GoProxyRegistryRepository) moduleURL(modulePath, suffix string) (string, error) {
	if it.IsPrivate(modulePath) {
		return "", fmt.Errorf(
			"module '%s' matches GOPRIVATE/GONOPROXY and is not resolved through the proxy: %w",
			modulePath, entities.ErrRegistryUnavailable,
		)
	}
	escaped, err := module.EscapePath(modulePath)
	if err != nil {
		return "", fmt.Errorf("invalid module path '%s': %w", modulePath, err)
	}
	return fmt.Sprintf("%s/%s/%s", it.proxyURL, escaped, suffix), nil
}

type latestInfo struct {
	Version string `json:"Version"`
}

func (it *GoProxyRegistryRepository) fetchVersions(ctx context.Context, modulePath string) ([]string, error) {
	url, err := it.moduleURL(modulePath, "@v/list")
	if err != nil {
		return nil, err
	}
	resp, err := it.client.Get(ctx, url, nil)
	if err != nil {
		return nil, httpclient.Describe(err, "Module", modulePath, credentialsHint)
	}
	var versions []string
	for _, line := range strings.Split(string(resp.Body), "\n") {
		v := strings.TrimSpace(line)
		if v != "" && modsemver.IsValid(v) {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return modsemver.Compare(versions[i], versions[j]) > 0
	})
	return versions, nil
}

func (it *GoProxyRegistryRepository) GetLatestVersion(ctx context.Context, modulePath string) (string, error) {
	url, err := it.moduleURL(modulePath, "@latest")
	if err != nil {
		return "", err
	}
	if resp, getErr := it.client.Get(ctx, url, nil); getErr == nil {
		var info latestInfo
		if json.Unmarshal(resp.Body, &info) == nil && info.Version != "" &&
			modsemver.Prerelease(info.Version) == "" {
			return info.Version, nil
		}
	} else if errors.Is(getErr, context.Canceled) {
		return "", getErr
	}

	versions, err := it.fetchVersions(ctx, modulePath)
	if err != nil {
		return "", err
	}
	for _, v := range versions {
		if modsemver.Prerelease(v) == "" {
			return v, nil
		}
	}
	return "", fmt.Errorf(
		"module '%s' exists but has no stable versions: %w", modulePath, entities.ErrNoStableVersion,
	)
}

func (it *GoProxyRegistryRepository) GetLatestVersionIncludingPrereleases(
	ctx context.Context,
	modulePath string,
) (string, error) {
	versions, err := it.fetchVersions(ctx, modulePath)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf(
			"module '%s' has no versions available: %w", modulePath, entities.ErrPackageNotFound,
		)
	}
	return versions[0], nil
}

func (it *GoProxyRegistryRepository) GetLatestVersionMatching(
	ctx context.Context,
	modulePath, constraint string,
) (string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("failed to parse version constraints '%s': %w", constraint, err)
	}
	versions, err := it.fetchVersions(ctx, modulePath)
	if err != nil {
		return "", err
	}
	for _, raw := range versions {
		if modsemver.Prerelease(raw) != "" {
			continue
		}
		v, parseErr := semver.NewVersion(entities.StripGoVersion(raw))
		if parseErr == nil && c.Check(v) {
			return raw, nil
		}
	}
	return "", fmt.Errorf(
		"no version of '%s' matches constraints '%s': %w", modulePath, constraint, entities.ErrNoMatchingVersion,
	)
}
