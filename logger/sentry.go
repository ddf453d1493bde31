package logger

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/xy-planning-network/trailrunner"
)

var _ SkipLogger = (*SentryLogger)(nil)

// A SentryLogger writes logs through a SkipLogger and reports Error and Fatal logs to Sentry.
// Warnings, such as denied access checks, are only written.
type SentryLogger struct {
	l   SkipLogger
	hub *sentry.Hub
}

// NewSentryLogger constructs a SentryLogger reporting to dsn on top of tl.
// If the Sentry client cannot be built, tl returns.
func NewSentryLogger(tl *StdLogger, dsn string) Logger {
	return newSentryLogger(tl, sentry.ClientOptions{Dsn: dsn})
}

func newSentryLogger(tl *StdLogger, opts sentry.ClientOptions) Logger {
	opts.Environment = tl.env.String()
	opts.IgnoreErrors = append(opts.IgnoreErrors, "write: broken pipe")
	if opts.SampleRate == 0 {
		opts.SampleRate = 1
	}

	client, err := sentry.NewClient(opts)
	if err != nil {
		tl.Error(fmt.Sprintf("unable to init Sentry: %s", err), nil)
		return tl
	}

	return &SentryLogger{
		l:   tl.AddSkip(1 + tl.Skip()),
		hub: sentry.NewHub(client, sentry.NewScope()),
	}
}

// AddSkip replaces the number of frames scrolled back to find the call site.
func (sl *SentryLogger) AddSkip(i int) SkipLogger {
	return &SentryLogger{l: sl.l.AddSkip(i), hub: sl.hub}
}

func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }
func (sl *SentryLogger) Info(msg string, ctx *LogContext)  { sl.l.Info(msg, ctx) }
func (sl *SentryLogger) Warn(msg string, ctx *LogContext)  { sl.l.Warn(msg, ctx) }

// Error writes an error log and reports it.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	if sl.l.LogLevel() > LogLevelError {
		return
	}

	sl.l.Error(msg, ctx)
	sl.report(sentry.LevelError, msg, ctx)
}

// Fatal writes a fatal log and reports it.
func (sl *SentryLogger) Fatal(msg string, ctx *LogContext) {
	if sl.l.LogLevel() > LogLevelFatal {
		return
	}

	sl.l.Fatal(msg, ctx)
	sl.report(sentry.LevelFatal, msg, ctx)
}

func (sl *SentryLogger) LogLevel() LogLevel { return sl.l.LogLevel() }
func (sl *SentryLogger) Skip() int          { return sl.l.Skip() }

// report sends ctx.Error to Sentry, or msg when there is none,
// tagged with the route and request ID a runner dispatched it under.
func (sl *SentryLogger) report(level sentry.Level, msg string, ctx *LogContext) {
	sl.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)

		if ctx == nil {
			sl.hub.CaptureMessage(msg)
			return
		}

		if ctx.Route != "" {
			scope.SetTag("route", ctx.Route)
		}

		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
			if id, ok := ctx.Request.Context().Value(trailrunner.RequestIDKey).(string); ok {
				scope.SetTag("request_id", id)
			}
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		if ctx.Error == nil {
			sl.hub.CaptureMessage(msg)
			return
		}

		sl.hub.CaptureException(ctx.Error)
	})
}
