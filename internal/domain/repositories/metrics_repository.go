package repositories

// MetricsRepository collects run statistics and exports them once at exit.
type MetricsRepository interface {
	ObserveLookup(registry, kind string, cached bool, err error)
	ObserveFile(fileType string, changed int, err error)
	WriteTo(path string) error
}
