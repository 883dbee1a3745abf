package scrape

// Config holds configuration for the inventory snapshot producer.
type Config struct {
	// URL is the dealership inventory page to scrape.
	URL string `mapstructure:"url" default:"https://www.audiwestisland.com/fr/inventaire/occasion/"`
	// TimeoutSeconds bounds the inventory page fetch.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
	// IntervalHours is the automatic sync cadence. 0 disables the scheduler;
	// runs are then triggered only via the CLI or the API.
	IntervalHours int `mapstructure:"interval_hours" default:"0"`
	// LockPath is the cross-process run lock file. Only one reconciliation
	// run may touch the catalog at a time.
	LockPath string `mapstructure:"lock_path" default:"/tmp/dealersync.lock"`
}
