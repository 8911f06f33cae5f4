package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrend/internal/ingest"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})

	logger.Info("hello", "k", "v")
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "component=http"))
	assert.Contains(t, out, "k=v")
	assert.Equal(t, ComponentHTTP, logger.Component())

	buf.Reset()
	logger.With("request_id", "r1").WithComponent(ComponentIngest).Debug("sub")
	out = buf.String()
	assert.Contains(t, out, "component=ingest")
	assert.NotContains(t, out, "component=http")
	assert.Contains(t, out, "request_id=r1")
}

func TestFromContext(t *testing.T) {
	logger := Discard()
	ctx := IntoContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestLogIngestWarnsOnDroppedRows(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))

	fields := NewFields().WithIngestStats("upload", ingest.Stats{Read: 5, Kept: 3, Dropped: 2})
	sl.LogIngest(context.Background(), "abc", "upload", fields)
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "rows_dropped=2")
	assert.Contains(t, out, "session_id=abc")

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), OpReport, nil)
	assert.Contains(t, buf.String(), "error=bad")
}
