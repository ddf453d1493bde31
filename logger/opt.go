package logger

import (
	"io"
	"log"

	"github.com/xy-planning-network/trailrunner"
)

// A Option configures a StdLogger under construction.
type Option func(*StdLogger)

// WithEnv sets the environment reported alongside errors sent to Sentry.
// An invalid env is ignored.
func WithEnv(env trailrunner.Environment) Option {
	return func(l *StdLogger) {
		if env.Valid() == nil {
			l.env = env
		}
	}
}

// WithLevel sets the lowest level written.
// LogLevelUnk is ignored.
func WithLevel(level LogLevel) Option {
	return func(l *StdLogger) {
		if level != LogLevelUnk {
			l.ll = level
		}
	}
}

// WithLogger sets the *log.Logger lines are printed with.
func WithLogger(log *log.Logger) Option {
	return func(l *StdLogger) { l.l = log }
}

// WithWriter prints lines to w without any prefix or timestamp.
func WithWriter(w io.Writer) Option {
	return WithLogger(log.New(w, "", 0))
}

// WithSkip sets how many extra frames are scrolled back to find the call site.
func WithSkip(skip int) Option {
	return func(l *StdLogger) { l.skip = skip }
}
