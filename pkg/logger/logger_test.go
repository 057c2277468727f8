package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/logger"
)

type runKey struct{}

func TestNew_ExtractsContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, logger.Config{}, logger.StringExtractor("run_id", runKey{}), nil)

	ctx := context.WithValue(context.Background(), runKey{}, "run-1")
	log.InfoContext(ctx, "sent", slog.Int("row", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sent", rec["msg"])
	assert.Equal(t, "run-1", rec["run_id"])
	assert.InDelta(t, 3, rec["row"], 0)
}

func TestNew_SkipsMissingContextValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, logger.Config{}, logger.StringExtractor("run_id", runKey{}))
	log.Info("no run")

	assert.NotContains(t, buf.String(), "run_id")
}

func TestNew_LevelAndFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, logger.Config{Level: "warn", Format: logger.FormatText})
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"))
}

func TestNew_WithAttrsKeepsExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, logger.Config{}, logger.StringExtractor("run_id", runKey{})).
		With(slog.String("component", "generator")).
		WithGroup("detail")

	ctx := context.WithValue(context.Background(), runKey{}, "run-2")
	log.InfoContext(ctx, "created", slog.String("doc_id", "d1"))

	out := buf.String()
	assert.Contains(t, out, `"component":"generator"`)
	assert.Contains(t, out, "run-2")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logger.ParseLevel(tt.in), tt.in)
	}
}

func TestNewNope(t *testing.T) {
	t.Parallel()
	log := logger.NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
