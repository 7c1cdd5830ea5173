// Package logging provides a zerolog wrapper with opinionated defaults.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger.
type Options struct {
	Level  string // trace, debug, info, warn, error (default info)
	Format string // console or json (default console)
	File   string // optional file the output is teed into
	Writer io.Writer
}

// New builds a logger from the options. The returned closer releases the log
// file, if one was opened, and is safe to call even when no file is in use.
func New(opt Options) (zerolog.Logger, func(), error) {
	lvl := parseLevel(opt.Level)

	var console io.Writer = os.Stderr
	if opt.Writer != nil {
		console = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	}

	closer := func() {}
	out := console
	if opt.File != "" {
		f, err := os.OpenFile(opt.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		// The file always receives structured JSON lines regardless of
		// the console format.
		out = zerolog.MultiLevelWriter(console, f)
		closer = func() { _ = f.Close() }
	}

	log := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return log, closer, nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
