package pypi

// VersionFromFilename exports versionFromFilename for testing.
var VersionFromFilename = versionFromFilename //nolint:gochecknoglobals // test export

// ParseSimpleHTML exports parseSimpleHTML for testing.
var ParseSimpleHTML = parseSimpleHTML //nolint:gochecknoglobals // test export
