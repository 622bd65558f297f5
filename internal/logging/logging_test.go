package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheuskafuri/articles/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logging.ParseLevel(tt.input), "level %q", tt.input)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("warn", &buf)

	logger.Info("hidden message")
	logger.Warn("visible message", slog.String("key", "value"))

	output := buf.String()
	assert.NotContains(t, output, "hidden message")
	assert.Contains(t, output, "visible message")
	assert.Contains(t, output, "key=value")
}

func TestNew_NilWriterDiscards(t *testing.T) {
	logger := logging.New("debug", nil)
	require.NotNil(t, logger)
	logger.Info("goes nowhere")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Component(logging.New("info", &buf), "session")

	logger.Info("login")

	assert.Contains(t, buf.String(), "component=session")
}

func TestOpenFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "articles.log")

	f, err := logging.OpenFile(path)
	require.NoError(t, err)

	logger := logging.New("info", f)
	logger.Info("written to file")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
