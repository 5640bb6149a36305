package httpclient

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bgentry/go-netrc/netrc"
	logger "github.com/sirupsen/logrus"
)

const maxCredentialFileSize = 10 << 20

// FirstEnv returns the first non-empty environment variable among names.
func FirstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// SplitURLCredentials removes user:password from a URL and returns them
// separately. Unparsable URLs are returned unchanged.
func SplitURLCredentials(raw string) (string, Credentials) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw, Credentials{}
	}
	password, _ := parsed.User.Password()
	creds := Credentials{Username: parsed.User.Username(), Password: password}
	parsed.User = nil
	return parsed.String(), creds
}

// HostOf returns the host name (without port) of a URL, or "" when unparsable.
func HostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// NetrcPath locates the netrc file: $NETRC, then ~/.netrc, then ~/_netrc.
func NetrcPath() string {
	if path := os.Getenv("NETRC"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{".netrc", "_netrc"} {
		path := filepath.Join(home, name)
		if _, statErr := os.Stat(path); statErr == nil {
			return path
		}
	}
	return ""
}

// NetrcCredentials returns the login and password recorded for host in the
// user's netrc file.
func NetrcCredentials(host string) (Credentials, bool) {
	path := NetrcPath()
	if path == "" || host == "" {
		return Credentials{}, false
	}
	return ReadNetrc(path, host)
}

// ReadNetrc parses a netrc file and returns the entry matching host, falling
// back to the default entry when the host has no complete login.
func ReadNetrc(path, host string) (Credentials, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxCredentialFileSize {
		return Credentials{}, false
	}
	file, err := netrc.ParseFile(path)
	if err != nil {
		logger.Debugf("[httpclient] ignoring unreadable netrc %s: %v", path, err)
		return Credentials{}, false
	}
	for _, name := range []string{host, ""} {
		if machine := file.FindMachine(name); machine != nil && machine.Login != "" && machine.Password != "" {
			return Credentials{Username: machine.Login, Password: machine.Password}, true
		}
	}
	return Credentials{}, false
}
