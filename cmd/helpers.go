package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/protondex/protondex/internal/logging"
	"github.com/protondex/protondex/internal/store"
)

// openStore opens the configured SQLite database.
func openStore() (*store.Store, error) {
	cfg := GetConfig()
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Database.Path, err)
	}
	return s, nil
}

// newLogger builds the configured logger. The closer must be called before
// exit when a log file is configured.
func newLogger() (zerolog.Logger, func(), error) {
	cfg := GetConfig()
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
}
