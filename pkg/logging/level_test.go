package logging_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/yolo-folds/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logging.Level
		slog slog.Level
	}{
		{"debug", logging.LevelDebug, slog.LevelDebug},
		{"INFO", logging.LevelInfo, slog.LevelInfo},
		{" Warn ", logging.LevelWarn, slog.LevelWarn},
		{"warning", logging.LevelWarn, slog.LevelWarn},
		{"Error", logging.LevelError, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.slog, got.Slog())
		})
	}

	_, err := logging.ParseLevel("verbose")
	assert.ErrorContains(t, err, `"verbose"`)
}

func TestLevel_SlogUnknown(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, logging.Level("trace").Slog())
}

func TestParseFormat(t *testing.T) {
	f, err := logging.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, logging.FormatJSON, f)

	f, err = logging.ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, logging.FormatText, f)

	_, err = logging.ParseFormat("xml")
	assert.Error(t, err)
}
