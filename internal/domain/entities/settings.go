package entities

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const maxSettingsFileSize = 1024 * 1024

// SettingsFileNames are searched, in order, in the working directory and then in every parent.
var SettingsFileNames = []string{ //nolint:gochecknoglobals // lookup order
	".updrc.toml",
	"upd.toml",
	".updrc",
	".updrc.yaml",
	".updrc.yml",
	"upd.yaml",
}

// Settings is the user configuration of upd.
type Settings struct {
	Ignore     []string                    `toml:"ignore"     yaml:"ignore"`
	Pin        map[string]string           `toml:"pin"        yaml:"pin"`
	Registries map[string]RegistrySettings `toml:"registries" yaml:"registries"`
}

// RegistrySettings overrides the location and credentials of one package index.
// The keys of Settings.Registries are "pypi", "npm", "crates" and "goproxy".
type RegistrySettings struct {
	URL       string   `toml:"url"        yaml:"url"`
	ExtraURLs []string `toml:"extra_urls" yaml:"extra_urls"`
	Token     string   `toml:"token"      yaml:"token"`
	Username  string   `toml:"username"   yaml:"username"`
	Password  string   `toml:"password"   yaml:"password"`
}

var _ PackagePolicy = (*Settings)(nil)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings returns an empty configuration.
func NewSettings() *Settings {
	return &Settings{
		Pin:        make(map[string]string),
		Registries: make(map[string]RegistrySettings),
	}
}

// LoadSettings reads a TOML or YAML configuration file, choosing the decoder by extension.
func LoadSettings(path string) (*Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %q: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSettingsFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if len(data) > maxSettingsFileSize {
		return nil, fmt.Errorf("config file %q: %w", path, ErrFileTooLarge)
	}

	settings := NewSettings()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, settings)
	default:
		_, err = toml.Decode(string(data), settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if settings.Pin == nil {
		settings.Pin = make(map[string]string)
	}
	if settings.Registries == nil {
		settings.Registries = make(map[string]RegistrySettings)
	}
	for name, registry := range settings.Registries {
		settings.Registries[name] = registry.expanded()
	}
	return settings, nil
}

// FindSettingsFile walks from dir up to the filesystem root and returns the
// first configuration file found.
func FindSettingsFile(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	for {
		for _, name := range SettingsFileNames {
			candidate := filepath.Join(current, name)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New("config file not found")
		}
		current = parent
	}
}

// DiscoverSettings loads the configuration nearest to dir. A missing or broken
// file yields empty settings.
func DiscoverSettings(dir string) *Settings {
	path, err := FindSettingsFile(dir)
	if err != nil {
		return NewSettings()
	}
	settings, err := LoadSettings(path)
	if err != nil {
		logger.Warnf("Ignoring config file: %v", err)
		return NewSettings()
	}
	logger.Debugf("Loaded config from %s", path)
	return settings
}

// ShouldIgnore reports whether the package is listed under ignore.
func (s *Settings) ShouldIgnore(name string) bool {
	for _, ignored := range s.Ignore {
		if ignored == name {
			return true
		}
	}
	return false
}

// PinnedVersion returns the version configured under [pin] for the package.
func (s *Settings) PinnedVersion(name string) (string, bool) {
	version, ok := s.Pin[name]
	return version, ok
}

// HasConfig reports whether any ignore or pin rule is present.
func (s *Settings) HasConfig() bool {
	return len(s.Ignore) > 0 || len(s.Pin) > 0
}

// Merge folds other into s: ignore lists are unioned, pins and registries from other win.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}
	for _, name := range other.Ignore {
		if !s.ShouldIgnore(name) {
			s.Ignore = append(s.Ignore, name)
		}
	}
	if s.Pin == nil {
		s.Pin = make(map[string]string)
	}
	for name, version := range other.Pin {
		s.Pin[name] = version
	}
	if s.Registries == nil {
		s.Registries = make(map[string]RegistrySettings)
	}
	for name, registry := range other.Registries {
		s.Registries[name] = registry
	}
}

// Registry returns the overrides for the named registry (zero value when absent).
func (s *Settings) Registry(name string) RegistrySettings {
	if s == nil {
		return RegistrySettings{}
	}
	return s.Registries[name]
}

func (r RegistrySettings) expanded() RegistrySettings {
	r.URL = expandEnv(r.URL)
	r.Token = expandEnv(r.Token)
	r.Username = expandEnv(r.Username)
	r.Password = expandEnv(r.Password)
	for i, extra := range r.ExtraURLs {
		r.ExtraURLs[i] = expandEnv(extra)
	}
	return r
}

// expandEnv replaces ${VAR} references with the variable's value.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return strings.TrimSpace(envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	}))
}
