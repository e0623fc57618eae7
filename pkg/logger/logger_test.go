package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, parseLevel(tt.in).Level())
		})
	}
}

func TestNewWithWriterEmitsServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")
	log.Debug("hidden")
	log.Info("visible", "component", "test")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "summarizer", entry["service"])
	require.Equal(t, "visible", entry["msg"])
	require.Equal(t, "test", entry["component"])
}
