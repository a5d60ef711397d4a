package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskapp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level       string
		wantDebug   bool
		wantInfo    bool
		wantWarning bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarning: true},
		{level: "info", wantDebug: false, wantInfo: true, wantWarning: true},
		{level: "WARN", wantDebug: false, wantInfo: false, wantWarning: true},
		{level: "error", wantDebug: false, wantInfo: false, wantWarning: false},
		{level: "bogus", wantDebug: false, wantInfo: true, wantWarning: true},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			original := slog.Default()
			defer slog.SetDefault(original)

			buf := &TestLogBuffer{}
			l := setup(config.ServerConfig{LogLevel: tc.level}, buf)

			ctx := context.Background()
			assert.Equal(t, tc.wantDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tc.wantInfo, l.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tc.wantWarning, l.Enabled(ctx, slog.LevelWarn))
			assert.Same(t, l, slog.Default(), "Setup should install the logger as default")
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &TestLogBuffer{}
	l := setup(config.ServerConfig{LogLevel: "info"}, buf)
	l.Info("hello", "component", "test")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestFromContext(t *testing.T) {
	buf, fallback := SetupTestLogger(t)

	t.Run("no logger in context", func(t *testing.T) {
		assert.Same(t, fallback, FromContext(context.Background()))
	})

	t.Run("logger in context", func(t *testing.T) {
		scoped := fallback.With("trace_id", "abc")
		ctx := WithLogger(context.Background(), scoped)
		FromContext(ctx).Info("scoped")
		assert.Contains(t, buf.String(), `"trace_id":"abc"`)
	})

	t.Run("explicit fallback", func(t *testing.T) {
		other := slog.New(slog.NewTextHandler(&TestLogBuffer{}, nil))
		assert.Same(t, other, FromContextOrDefault(context.Background(), other))
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), nil))
	})
}
