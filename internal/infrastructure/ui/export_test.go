package ui

// Paint exports paint for testing.
var Paint = paint //nolint:gochecknoglobals // test export
