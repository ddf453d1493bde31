package logger_test

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner/logger"
)

var (
	logLevelRegexp = regexp.MustCompile(`^\[[A-Z]+\]`)
	fpRegexp       = regexp.MustCompile(`logger/logger_test\.go:\d+`)
)

func init() { color.NoColor = true }

func newTestLogger(b *bytes.Buffer, lvl logger.LogLevel) *logger.StdLogger {
	return logger.NewStdLogger(
		logger.WithWriter(b),
		logger.WithLevel(lvl),
	)
}

func TestNewLogLevel(t *testing.T) {
	for _, tc := range []struct {
		val      string
		expected logger.LogLevel
	}{
		{"", logger.LogLevelUnk},
		{"verbose", logger.LogLevelUnk},
		{"debug", logger.LogLevelDebug},
		{"DEBUG", logger.LogLevelDebug},
		{"INFO", logger.LogLevelInfo},
		{"WARN", logger.LogLevelWarn},
		{"ERROR", logger.LogLevelError},
		{"FATAL", logger.LogLevelFatal},
	} {
		t.Run(tc.val, func(t *testing.T) {
			require.Equal(t, tc.expected, logger.NewLogLevel(tc.val))
		})
	}
}

func TestStdLoggerLevels(t *testing.T) {
	for _, tc := range []struct {
		name    string
		level   logger.LogLevel
		log     func(logger.Logger)
		printed bool
	}{
		{"debug-at-info", logger.LogLevelInfo, func(l logger.Logger) { l.Debug("msg", nil) }, false},
		{"info-at-info", logger.LogLevelInfo, func(l logger.Logger) { l.Info("msg", nil) }, true},
		{"warn-at-error", logger.LogLevelError, func(l logger.Logger) { l.Warn("msg", nil) }, false},
		{"error-at-error", logger.LogLevelError, func(l logger.Logger) { l.Error("msg", nil) }, true},
		{"fatal-at-debug", logger.LogLevelDebug, func(l logger.Logger) { l.Fatal("msg", nil) }, true},
		{"unk-keeps-info", logger.LogLevelUnk, func(l logger.Logger) { l.Info("msg", nil) }, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			b := new(bytes.Buffer)
			l := newTestLogger(b, tc.level)

			// Act
			tc.log(l)

			// Assert
			if !tc.printed {
				require.Zero(t, b.Len())
				return
			}

			require.Regexp(t, logLevelRegexp, b.String())
			require.Contains(t, b.String(), "'msg'")
		})
	}
}

func TestStdLoggerCallSite(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := newTestLogger(b, logger.LogLevelDebug)

	// Act
	l.Info("call site", nil)

	// Assert
	require.Regexp(t, fpRegexp, b.String())

	// Arrange
	b.Reset()

	// Act
	l.Warn("with context", &logger.LogContext{Caller: "somewhere.go:1", Error: errors.New("oops")})

	// Assert
	require.Equal(t, "[WARN] somewhere.go:1 'with context' log_context: {\"error\":\"oops\"}\n", b.String())
}

func TestStdLoggerAddSkip(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := newTestLogger(b, logger.LogLevelDebug)

	// Act
	skipped := l.AddSkip(3)

	// Assert
	require.Equal(t, 3, skipped.Skip())
	require.Equal(t, 0, l.Skip())
	require.Equal(t, logger.LogLevelDebug, skipped.LogLevel())
}
