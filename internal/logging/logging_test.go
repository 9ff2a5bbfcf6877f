package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-calendar/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.input)
		require.NoError(t, err, "ParseLevel(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.input)
	}

	_, err := logging.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, zerolog.WarnLevel, false)

	log.Info().Msg("hidden")
	log.Warn().Str("event_id", "42").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "event_id=42")
}
