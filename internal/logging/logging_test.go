package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseLevel(input), "level %q", input)
	}
}

func TestNewWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "info")
	logger.Debug("hidden")
	logger.Info("visible", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	fallback := slog.Default()
	assert.Nil(t, FromContext(context.Background()))
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))

	logger := New(&bytes.Buffer{}, "debug")
	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, logger, FromContextOr(ctx, fallback))
}
