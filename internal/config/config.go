package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-calendar/internal/model"
	"github.com/Tiliavir/trivial-calendar/internal/storage"
	"github.com/Tiliavir/trivial-calendar/internal/timecalc"
)

// EnvPrefix prefixes environment overrides, e.g. TCAL_LOG_LEVEL.
const EnvPrefix = "TCAL"

// Config is the root configuration for tcal, stored in ~/.tcal/config.yaml.
type Config struct {
	Calendar CalendarConfig `yaml:"calendar"`
	Log      LogConfig      `yaml:"log"`
}

// CalendarConfig holds view and editor defaults.
type CalendarConfig struct {
	// DefaultView is the grid shown on start: "month" or "week".
	DefaultView string `yaml:"default_view" envconfig:"DEFAULT_VIEW"`
	// StartDate is the initially displayed date (YYYY-MM-DD). Empty = today.
	StartDate string `yaml:"start_date" envconfig:"START_DATE"`
	// Seed loads the demo events on start.
	Seed bool `yaml:"seed" envconfig:"SEED"`
	// DefaultColor prefills the color of new events.
	DefaultColor string `yaml:"default_color" envconfig:"DEFAULT_COLOR"`
	// DefaultStartTime and DefaultEndTime prefill new timed events.
	DefaultStartTime string `yaml:"default_start_time" envconfig:"DEFAULT_START_TIME"`
	DefaultEndTime   string `yaml:"default_end_time" envconfig:"DEFAULT_END_TIME"`
	// PastLimit caps the past events shown by "list".
	PastLimit int `yaml:"past_limit" envconfig:"PAST_LIMIT"`
	// Color controls ANSI output: "auto", "always" or "never".
	Color string `yaml:"color" envconfig:"COLOR"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" envconfig:"LEVEL"`
}

const (
	DefaultView      = "month"
	DefaultStartTime = "09:00"
	DefaultEndTime   = "10:00"
	DefaultPastLimit = 3
	DefaultColorMode = "auto"
	DefaultLogLevel  = "warn"
)

// Default returns a Config pre-filled with sensible defaults.
func Default() Config {
	return Config{
		Calendar: CalendarConfig{
			DefaultView:      DefaultView,
			Seed:             true,
			DefaultColor:     string(model.DefaultColor),
			DefaultStartTime: DefaultStartTime,
			DefaultEndTime:   DefaultEndTime,
			PastLimit:        DefaultPastLimit,
			Color:            DefaultColorMode,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# tcal configuration – ~/.tcal/config.yaml
#
# All settings are optional; the defaults shown below work out of the box.
# Every key can also be set through the environment, e.g.
# TCAL_CALENDAR_DEFAULT_VIEW=week or TCAL_LOG_LEVEL=debug.

calendar:
  # Grid shown on start: month or week.
  default_view: month

  # Initially displayed date (YYYY-MM-DD). Leave empty for today.
  start_date: ""

  # Load the demo events (Team Standup, Design Review, All Hands Meeting).
  seed: true

  # Prefilled values for new events.
  # Colors: blue, red, green, purple, yellow, pink.
  default_color: blue
  default_start_time: "09:00"
  default_end_time: "10:00"

  # Number of past events shown by "tcal list".
  past_limit: 3

  # ANSI colors: auto (only on a terminal), always or never.
  color: auto

log:
  # debug, info, warn or error. Logs go to stderr.
  level: warn
`

// DefaultPath returns ~/.tcal/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tcal", "config.yaml"), nil
}

// Load reads the config at path, creating it with annotated defaults on
// first run. Keys missing from the file keep their defaults. TCAL_*
// environment variables override file values.
func Load(path string) (Config, []string, error) {
	cfg := Default()
	var warnings []string

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			warnings = append(warnings, fmt.Sprintf("could not create config file %s: %v", path, writeErr))
		}
	case err != nil:
		return Default(), nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), nil, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Default(), nil, fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}

	warnings = append(warnings, cfg.Normalize()...)
	return cfg, warnings, nil
}

// Normalize replaces invalid values with defaults and reports each fix.
func (c *Config) Normalize() []string {
	var fixes []string
	fix := func(field, bad, good string) {
		fixes = append(fixes, fmt.Sprintf("invalid %s %q, using %q", field, bad, good))
	}

	cal := &c.Calendar
	switch strings.ToLower(cal.DefaultView) {
	case "month", "week":
		cal.DefaultView = strings.ToLower(cal.DefaultView)
	case "":
		cal.DefaultView = DefaultView
	default:
		fix("calendar.default_view", cal.DefaultView, DefaultView)
		cal.DefaultView = DefaultView
	}

	if cal.StartDate != "" {
		if _, err := timecalc.ParseDate(cal.StartDate, time.UTC); err != nil {
			fix("calendar.start_date", cal.StartDate, "")
			cal.StartDate = ""
		}
	}

	if cal.DefaultColor == "" {
		cal.DefaultColor = string(model.DefaultColor)
	} else if col, err := model.ParseColor(cal.DefaultColor); err != nil {
		fix("calendar.default_color", cal.DefaultColor, string(model.DefaultColor))
		cal.DefaultColor = string(model.DefaultColor)
	} else {
		cal.DefaultColor = string(col)
	}

	if _, _, err := timecalc.ParseClock(cal.DefaultStartTime); err != nil {
		if cal.DefaultStartTime != "" {
			fix("calendar.default_start_time", cal.DefaultStartTime, DefaultStartTime)
		}
		cal.DefaultStartTime = DefaultStartTime
	}
	if _, _, err := timecalc.ParseClock(cal.DefaultEndTime); err != nil {
		if cal.DefaultEndTime != "" {
			fix("calendar.default_end_time", cal.DefaultEndTime, DefaultEndTime)
		}
		cal.DefaultEndTime = DefaultEndTime
	}

	if cal.PastLimit < 0 {
		fix("calendar.past_limit", fmt.Sprint(cal.PastLimit), fmt.Sprint(DefaultPastLimit))
		cal.PastLimit = DefaultPastLimit
	}

	switch strings.ToLower(cal.Color) {
	case "auto", "always", "never":
		cal.Color = strings.ToLower(cal.Color)
	case "":
		cal.Color = DefaultColorMode
	default:
		fix("calendar.color", cal.Color, DefaultColorMode)
		cal.Color = DefaultColorMode
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(c.Log.Level)
	case "":
		c.Log.Level = DefaultLogLevel
	default:
		fix("log.level", c.Log.Level, DefaultLogLevel)
		c.Log.Level = DefaultLogLevel
	}
	return fixes
}

// writeDefault writes the annotated default config template, creating the
// config directory if needed.
func writeDefault(path string) error {
	if err := storage.WriteFileAtomic(path, 0o600, []byte(configTemplate)); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
