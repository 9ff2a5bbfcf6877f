package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel keeps the terminal quiet unless something goes wrong.
const DefaultLevel = "warn"

// ParseLevel maps a config/flag value to a zerolog level. An empty string
// yields DefaultLevel.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultLevel
	}
	switch s {
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(s)
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// New builds a console logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
