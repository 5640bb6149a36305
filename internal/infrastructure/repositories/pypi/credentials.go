package pypi

import (
	"os"
	"strings"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/httpclient"
)

// DetectIndexURL returns the configured index, then UV_INDEX_URL, PIP_INDEX_URL
// and PYTHON_INDEX_URL, then the public index.
func DetectIndexURL(settings entities.RegistrySettings) string {
	if settings.URL != "" {
		return settings.URL
	}
	if url := httpclient.FirstEnv("UV_INDEX_URL", "PIP_INDEX_URL", "PYTHON_INDEX_URL"); url != "" {
		return url
	}
	return defaultIndexURL
}

// DetectExtraIndexURLs gathers extra indexes from settings and from the
// whitespace separated UV_EXTRA_INDEX_URL and PIP_EXTRA_INDEX_URL variables.
func DetectExtraIndexURLs(settings entities.RegistrySettings) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(url string) {
		if url = strings.TrimSpace(url); url != "" && !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	for _, url := range settings.ExtraURLs {
		add(url)
	}
	for _, name := range []string{"UV_EXTRA_INDEX_URL", "PIP_EXTRA_INDEX_URL"} {
		for _, url := range strings.Fields(os.Getenv(name)) {
			add(url)
		}
	}
	return urls
}

// DetectBearerToken looks for an index token in the usual uv, pip and poetry variables.
func DetectBearerToken() string {
	if token := httpclient.FirstEnv("UV_INDEX_TOKEN", "PIP_INDEX_TOKEN", "PYPI_TOKEN", "POETRY_PYPI_TOKEN_PYPI"); token != "" {
		return token
	}
	password := os.Getenv("POETRY_HTTP_BASIC_PYPI_PASSWORD")
	username := os.Getenv("POETRY_HTTP_BASIC_PYPI_USERNAME")
	if password != "" && (username == "" || username == "__token__") {
		return password
	}
	return ""
}

// DetectCredentials resolves credentials for an index: bearer token first,
// then username and password variables, then the netrc entry of the index host.
func DetectCredentials(indexURL string) httpclient.Credentials {
	if token := DetectBearerToken(); token != "" {
		return httpclient.Credentials{Token: token}
	}
	for _, prefix := range []string{"UV_INDEX", "PIP_INDEX"} {
		username, password := os.Getenv(prefix+"_USERNAME"), os.Getenv(prefix+"_PASSWORD")
		if username != "" && password != "" {
			return httpclient.Credentials{Username: username, Password: password}
		}
	}
	if creds, ok := httpclient.NetrcCredentials(httpclient.HostOf(indexURL)); ok {
		return creds
	}
	return httpclient.Credentials{}
}

func credentialsOf(settings entities.RegistrySettings) httpclient.Credentials {
	return httpclient.Credentials{
		Token:    settings.Token,
		Username: settings.Username,
		Password: settings.Password,
	}
}
