package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/environment"
	"github.com/dmitrymomot/mango/pkg/logger"
)

type ctxKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})

	t.Run("level filters", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("production", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(environment.Production, "mango"))
		log.Debug("hidden")
		log.Info("shown")

		entry := decode(t, buf)
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "mango", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(environment.Development, "mango"))
		log.Debug("visible")
		assert.Contains(t, buf.String(), "msg=visible")
		assert.Contains(t, buf.String(), "env=development")
	})
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithEnvironment(environment.Development, "mango"),
		logger.WithConfig(logger.Config{Level: "warn", Format: "JSON"}),
	)
	log.Info("dropped")
	log.Warn("kept")

	entry := decode(t, buf)
	assert.Equal(t, "kept", entry["msg"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(ctxKey{}).(string)
			return slog.String("trace", v), ok
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "abc")
	log.With(logger.Component("test")).InfoContext(ctx, "with ctx",
		logger.Error(errors.New("boom")),
		logger.UserID(""),
		logger.Status(403),
	)

	entry := decode(t, buf)
	assert.Equal(t, "abc", entry["trace"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.EqualValues(t, 403, entry["status"])
	assert.NotContains(t, entry, "user_id")
}

func TestLogHandlerDecorator_KeepsExtractorsOnDerivedHandlers(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := logger.NewLogHandlerDecorator(slog.NewJSONHandler(buf, nil), func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(ctxKey{}).(string)
		return slog.String("trace", v), ok
	})
	ctx := context.WithValue(context.Background(), ctxKey{}, "abc")

	slog.New(h.WithAttrs([]slog.Attr{slog.String("service", "mango")})).InfoContext(ctx, "attrs")
	entry := decode(t, buf)
	assert.Equal(t, "abc", entry["trace"])
	assert.Equal(t, "mango", entry["service"])

	buf.Reset()
	slog.New(h.WithGroup("req")).InfoContext(ctx, "group")
	entry = decode(t, buf)
	require.IsType(t, map[string]any{}, entry["req"])
	assert.Equal(t, "abc", entry["req"].(map[string]any)["trace"])
}
