package logger_adapter

import (
	"bytes"
	"easystay-service/internal/core/port"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postedRecord struct {
	tag  string
	data port.Fields
}

type fakeFluent struct {
	posts  []postedRecord
	closed bool
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.posts = append(f.posts, postedRecord{tag: tag, data: message.(port.Fields)})
	return nil
}

func (f *fakeFluent) Close() error {
	f.closed = true
	return nil
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"component": "search"}).
		Error("Search failed", errors.New("boom"), port.Fields{"limit": 200})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Search failed", record["msg"])
	assert.Equal(t, "search", record["component"])
	assert.Equal(t, float64(200), record["limit"])
	assert.Equal(t, "boom", record["error"])
}

func TestSlogAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "shown")
}

func TestFluentLoggerAdapter(t *testing.T) {
	client := &fakeFluent{}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelInfo)
	require.NoError(t, err)
	adapter.now = func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }

	child := adapter.WithFields(port.Fields{"trace_id": "abc"})
	child.Debug("dropped", nil)
	child.Warn("slow query", port.Fields{"ms": 1200})
	child.Error("failed", errors.New("db down"), nil)

	require.Len(t, client.posts, 2)
	assert.Equal(t, "warn", client.posts[0].tag)
	assert.Equal(t, "abc", client.posts[0].data["trace_id"])
	assert.Equal(t, 1200, client.posts[0].data["ms"])
	assert.Equal(t, "2026-05-01T08:00:00Z", client.posts[0].data["timestamp"])
	assert.Equal(t, "db down", client.posts[1].data["error"])
	assert.NotContains(t, adapter.fields, "trace_id", "parent logger keeps its own fields")

	require.NoError(t, adapter.Close())
	assert.True(t, client.closed)
}

func TestNewFluentLoggerAdapter_NilClient(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	assert.Error(t, err)

	var buf bytes.Buffer
	single := NewSlogAdapter(SlogConfig{Writer: &buf})
	got, err := NewMultiloggerAdapter(single, nil)
	require.NoError(t, err)
	assert.Same(t, single, got)

	client := &fakeFluent{}
	fluent, err := NewFluentLoggerAdapter(client, slog.LevelDebug)
	require.NoError(t, err)

	multi, err := NewMultiloggerAdapter(single, fluent)
	require.NoError(t, err)
	multi.WithFields(port.Fields{"request": "r1"}).Info("Request started", nil)

	assert.Contains(t, buf.String(), "Request started")
	assert.Contains(t, buf.String(), "request=r1")
	require.Len(t, client.posts, 1)
	assert.Equal(t, "r1", client.posts[0].data["request"])
}
