package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cwa-weatherboard/internal/infra/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewInstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	for _, format := range []string{"text", "json"} {
		cfg := &config.Config{Log: config.LogConfig{Level: "warn", Format: format}}
		logger := New(cfg)
		require.NotNil(t, logger)
		require.Same(t, logger.Handler(), slog.Default().Handler())
		require.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
		require.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	}
}
