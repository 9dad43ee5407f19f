package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger checks that named context loggers write to their own sink.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "locator")
	ctx = WithKV(ctx, "role", "locating")

	InfoKV(ctx, "Peer written", "address", "AA:BB:CC:DD:EE:FF")

	out := buf.String()
	require.Contains(t, out, "locator")
	require.Contains(t, out, "Peer written")
	require.Contains(t, out, "AA:BB:CC:DD:EE:FF")
	require.Contains(t, out, "locating")
}

// TestFromContextFallsBack ensures a bare context yields the global logger.
func TestFromContextFallsBack(t *testing.T) {
	t.Parallel()

	require.Same(t, global, FromContext(context.Background()))
}

// TestWithLevel writes debug entries through a core configured for errors only.
func TestWithLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithWriter(&buf, zapcore.ErrorLevel, WithLevel(zapcore.DebugLevel))
	l.Debug("pass done")
	l.With("peer", "F1:D0:00:00:00:01").Info("pushed")

	require.Contains(t, buf.String(), "pass done")
	require.Contains(t, buf.String(), "F1:D0:00:00:00:01")

	buf.Reset()

	quiet := NewWithWriter(&buf, zapcore.DebugLevel, WithLevel(zapcore.WarnLevel))
	quiet.Info("dropped")
	require.Empty(t, buf.String())
}
