package entities

// Version is the release of upd, overridden at build time with
// -ldflags "-X github.com/rios0rios0/upd/internal/domain/entities.Version=...".
var Version = "dev" //nolint:gochecknoglobals // set by the linker

// UserAgent identifies upd to package registries.
func UserAgent() string {
	return "upd/" + Version
}
