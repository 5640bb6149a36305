package entities

import "errors"

var (
	// ErrPackageNotFound is returned when a registry has no record of a package.
	ErrPackageNotFound = errors.New("package not found")
	// ErrRegistryUnavailable covers transport failures and unexpected statuses.
	ErrRegistryUnavailable = errors.New("registry unavailable")
	// ErrNoMatchingVersion is returned when no published version satisfies a constraint.
	ErrNoMatchingVersion = errors.New("no version matches constraint")
	// ErrNoStableVersion is returned when a package only has pre-releases.
	ErrNoStableVersion = errors.New("no stable version available")
	// ErrFileTooLarge is returned when a manifest exceeds the read limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrChecksFailed signals a --check run that found work to do.
	ErrChecksFailed = errors.New("check failed")
)
