package crates

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upd/internal/infrastructure/repositories/httpclient"
)

type cargoCredentials struct {
	Registry struct {
		Token string `toml:"token"`
	} `toml:"registry"`
	Registries map[string]struct {
		Token string `toml:"token"`
	} `toml:"registries"`
}

// DetectToken resolves a registry token from CARGO_REGISTRY_TOKEN (crates-io only),
// CARGO_REGISTRIES_<NAME>_TOKEN, then the cargo credentials file.
func DetectToken(registry string) string {
	if registry == crateRegistryName {
		if token := httpclient.FirstEnv("CARGO_REGISTRY_TOKEN"); token != "" {
			return token
		}
	}
	envName := "CARGO_REGISTRIES_" + strings.ToUpper(strings.ReplaceAll(registry, "-", "_")) + "_TOKEN"
	if token := httpclient.FirstEnv(envName); token != "" {
		return token
	}

	cargoHome := os.Getenv("CARGO_HOME")
	if cargoHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cargoHome = filepath.Join(home, ".cargo")
	}
	for _, name := range []string{"credentials.toml", "credentials"} {
		path := filepath.Join(cargoHome, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return ReadCredentialsToken(path, registry)
	}
	return ""
}

// ReadCredentialsToken reads the token of a registry from a cargo credentials file.
func ReadCredentialsToken(path, registry string) string {
	var creds cargoCredentials
	if _, err := toml.DecodeFile(path, &creds); err != nil {
		logger.Debugf("[crates] failed to read %s: %v", path, err)
		return ""
	}
	if entry, ok := creds.Registries[registry]; ok && entry.Token != "" {
		return entry.Token
	}
	if registry == crateRegistryName {
		return creds.Registry.Token
	}
	return ""
}
