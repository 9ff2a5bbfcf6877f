package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-calendar/internal/config"
)

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, warnings, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, config.Default(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err, "template should be written on first run")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The written template parses back to the defaults.
	again, warnings, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, config.Default(), again)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  default_view: week\n  seed: false\n"), 0o600))

	cfg, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "week", cfg.Calendar.DefaultView)
	assert.False(t, cfg.Calendar.Seed)
	assert.Equal(t, config.DefaultStartTime, cfg.Calendar.DefaultStartTime)
	assert.Equal(t, config.DefaultPastLimit, cfg.Calendar.PastLimit)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `calendar:
  default_view: agenda
  start_date: tomorrow
  default_color: Orange
  default_start_time: "9am"
  past_limit: -2
  color: rainbow
log:
  level: chatty
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, warnings, err := config.Load(path)
	require.NoError(t, err)
	assert.Len(t, warnings, 7)

	want := config.Default()
	assert.Equal(t, want, cfg)
}

func TestLoadCanonicalisesCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  default_view: WEEK\n  default_color: Pink\nlog:\n  level: DEBUG\n"), 0o600))

	cfg, warnings, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "week", cfg.Calendar.DefaultView)
	assert.Equal(t, "pink", cfg.Calendar.DefaultColor)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  default_view: month\n"), 0o600))

	t.Setenv("TCAL_CALENDAR_DEFAULT_VIEW", "week")
	t.Setenv("TCAL_CALENDAR_SEED", "false")
	t.Setenv("TCAL_CALENDAR_START_DATE", "2024-11-15")
	t.Setenv("TCAL_LOG_LEVEL", "info")

	cfg, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "week", cfg.Calendar.DefaultView)
	assert.False(t, cfg.Calendar.Seed)
	assert.Equal(t, "2024-11-15", cfg.Calendar.StartDate)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadBadEnvValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("TCAL_CALENDAR_PAST_LIMIT", "lots")

	_, _, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadCorruptYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar: [unclosed"), 0o600))

	_, _, err := config.Load(path)
	assert.Error(t, err)
}
