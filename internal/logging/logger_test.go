package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

type sinkHandler struct {
	level    slog.Level
	received []string
	fail     error
}

func (s *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.level
}

func (s *sinkHandler) Handle(_ context.Context, record slog.Record) error {
	if s.fail != nil {
		return s.fail
	}
	s.received = append(s.received, record.Message)
	return nil
}

func (s *sinkHandler) WithAttrs([]slog.Attr) slog.Handler { return s }
func (s *sinkHandler) WithGroup(string) slog.Handler      { return s }

func TestMultiHandlerRoutesByLevel(t *testing.T) {
	stdout := &sinkHandler{level: slog.LevelInfo}
	pg := &sinkHandler{level: slog.LevelError}
	multi := NewMultiHandler(stdout, pg)

	ctx := context.Background()
	info := slog.NewRecord(time.Now(), slog.LevelInfo, "order created", 0)
	errRec := slog.NewRecord(time.Now(), slog.LevelError, "activation failed", 0)

	require.NoError(t, multi.Handle(ctx, info))
	require.NoError(t, multi.Handle(ctx, errRec))

	assert.Equal(t, []string{"order created", "activation failed"}, stdout.received)
	assert.Equal(t, []string{"activation failed"}, pg.received)
}

// A failing sink must not block delivery to the remaining sinks.
func TestMultiHandlerFailingSinkIsIsolated(t *testing.T) {
	broken := &sinkHandler{level: slog.LevelInfo, fail: errors.New("db down")}
	healthy := &sinkHandler{level: slog.LevelInfo}
	multi := NewMultiHandler(broken, healthy)

	record := slog.NewRecord(time.Now(), slog.LevelError, "activation failed", 0)
	err := multi.Handle(context.Background(), record)

	assert.Error(t, err)
	assert.Equal(t, []string{"activation failed"}, healthy.received)
}
