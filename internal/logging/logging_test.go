package logging

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			res := NewLogger(Config{Level: tt.level, Format: FormatJSON})
			assert.Equal(t, tt.want, res.Logger.GetLevel())
			assert.False(t, res.UsingFile)
		})
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wishboard.log")

	res := NewLogger(Config{Level: "info", Format: FormatJSON, Output: OutputFile, File: path})
	t.Cleanup(func() { _ = res.Close() })

	assert.True(t, res.UsingFile)
	assert.Equal(t, path, res.FilePath)
	assert.FileExists(t, path)
	require.NoError(t, res.Close())
	require.NoError(t, res.Close(), "Close is idempotent")
}

func TestNewLogger_FileFallback(t *testing.T) {
	dir := t.TempDir()

	// A directory cannot be opened as a log file.
	res := NewLogger(Config{Output: OutputFile, File: dir})
	assert.False(t, res.UsingFile)
	assert.True(t, res.FallbackUsed)
	assert.NotEmpty(t, res.FallbackReason)
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	generated := GetOrGenerateTraceID(ctx)
	assert.Len(t, generated, 26)

	ctx = ContextWithTraceID(ctx, "trace-1")
	assert.Equal(t, "trace-1", GetOrGenerateTraceID(ctx))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}

func TestTraceHook(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(traceHook{})
	ctx := ContextWithTraceID(context.Background(), "abc")

	logger.Info().Ctx(ctx).Msg("hello")
	assert.Contains(t, buf.String(), `"trace_id":"abc"`)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := ComponentLogger(zerolog.New(&buf), "fetch")
	ctx := logger.WithContext(context.Background())

	FromContext(ctx).Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"fetch"`)
}
