package cache

// NewVersionCacheWithClock exports newVersionCache for testing.
var NewVersionCacheWithClock = newVersionCache //nolint:gochecknoglobals // test export
