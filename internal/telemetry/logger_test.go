package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock handler to inspect log records
type mockHandler struct {
	mu      sync.Mutex
	records []slog.Record
	attrs   []slog.Attr
	group   string
	enabled bool
}

func (h *mockHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.enabled
}

func (h *mockHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *mockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &mockHandler{enabled: h.enabled, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...), group: h.group}
}

func (h *mockHandler) WithGroup(name string) slog.Handler {
	return &mockHandler{enabled: h.enabled, attrs: h.attrs, group: name}
}

func (h *mockHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func TestMultiHandler(t *testing.T) {
	h1 := &mockHandler{enabled: true}
	h2 := &mockHandler{enabled: false}
	multi := &multiHandler{handlers: []slog.Handler{h1, h2}}

	t.Run("Enabled", func(t *testing.T) {
		assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, (&multiHandler{handlers: []slog.Handler{h2}}).Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("Handle skips disabled handlers", func(t *testing.T) {
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "measured", 0)
		require.NoError(t, multi.Handle(context.Background(), record))
		assert.Equal(t, 1, h1.count())
		assert.Equal(t, 0, h2.count())
	})

	t.Run("WithAttrs and WithGroup", func(t *testing.T) {
		attrs := []slog.Attr{slog.String("benchmark", "sleep")}
		withAttrs, ok := multi.WithAttrs(attrs).(*multiHandler)
		require.True(t, ok)
		for _, h := range withAttrs.handlers {
			assert.Equal(t, attrs, h.(*mockHandler).attrs)
		}

		withGroup, ok := multi.WithGroup("run").(*multiHandler)
		require.True(t, ok)
		for _, h := range withGroup.handlers {
			assert.Equal(t, "run", h.(*mockHandler).group)
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Writer and level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closeFn := NewLogger(&buf, false, "")
		defer closeFn()

		logger.Debug("hidden")
		logger.Info("shown", "repeat", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, float64(3), entry["repeat"])
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("Debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _ := NewLogger(&buf, true, "")
		logger.Debug("debug message")
		assert.Contains(t, buf.String(), "debug message")
	})

	t.Run("File logging", func(t *testing.T) {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "timeit.log")
		logger, closeFn := NewLogger(&buf, false, path)
		logger.Info("file message")
		require.NoError(t, closeFn())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "file message")
		assert.Contains(t, buf.String(), "file message")
	})

	t.Run("No handlers", func(t *testing.T) {
		logger, _ := NewLogger(nil, false, "")
		assert.NotNil(t, logger)
		logger.Info("discarded")
	})
}

func TestNewLogger_FileError(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	invalidPath := filepath.Join(t.TempDir(), "nonexistent", "test.log")
	logger, closeFn := NewLogger(nil, false, invalidPath)
	assert.NotNil(t, logger)
	assert.NoError(t, closeFn())
	assert.Contains(t, buf.String(), "Failed to open log file")
}

func TestLogHelpers(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	LogDebug("d")
	LogInfo("i", "k", "v")
	LogError("e", assert.AnError)

	out := buf.String()
	assert.Contains(t, out, `"msg":"d"`)
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, assert.AnError.Error())
}
