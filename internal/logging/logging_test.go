package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"silent":  LevelSilent,
		"bogus":   slog.LevelWarn,
		"":        slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), in)
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelSilent, LevelFromVerbosity(2, true, slog.LevelWarn))
	assert.Equal(t, slog.LevelError, LevelFromVerbosity(0, false, slog.LevelError))
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(1, false, slog.LevelWarn))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(3, false, slog.LevelWarn))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("changed function", "id", "example.com/calc.Add")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "changed function")
	assert.Contains(t, out, "id=example.com/calc.Add")
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, slog.LevelDebug)
	slog.Debug("through default")
	assert.Contains(t, buf.String(), "through default")
}

func TestSetup_Silent(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup(&buf, LevelSilent)
	slog.Error("never shown")

	assert.Empty(t, buf.String())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
