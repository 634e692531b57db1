package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the command logger. A log file takes JSON lines; without
// one, logs go to console in human form, or nowhere when console is nil.
func newLogger(level, file string, console io.Writer) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch {
	case file != "":
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("open log file: %w", err)
		}
		return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f.Close, nil
	case console != nil:
		w := zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), noop, nil
	default:
		return zerolog.Nop(), noop, nil
	}
}
