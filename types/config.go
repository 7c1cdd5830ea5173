// Package types holds configuration structures shared across commands.
package types

// AppConfig is the root application configuration, populated by viper and
// validated at startup.
type AppConfig struct {
	Verbose  bool           `mapstructure:"verbose"`
	Database DatabaseConfig `mapstructure:"database"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Log      LogConfig      `mapstructure:"log"`
	Steam    SteamConfig    `mapstructure:"steam"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// IngestConfig controls the ingestion pipeline.
type IngestConfig struct {
	// ReportsDir is scanned for *.tar.gz archives and loose *.json files.
	ReportsDir string `mapstructure:"reportsDir" validate:"required"`
	// DeleteJSON removes loose JSON files after their batch has been committed.
	DeleteJSON bool `mapstructure:"deleteJson"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
	// File, when set, tees all log output into the given file in addition
	// to the console.
	File string `mapstructure:"file"`
}

// SteamConfig configures the Steam catalog fetcher.
type SteamConfig struct {
	AppListURL string `mapstructure:"appListUrl" validate:"omitempty,url"`
}
