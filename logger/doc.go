/*
Package logger writes leveled, colorized log lines for a trailrunner app.

[Logger] is what the rest of the module depends on.
[StdLogger] implements it over a *log.Logger, dropping anything below its [LogLevel].
Each line reads

	2024/04/28 15:55:21 [DEBUG] runner/runner.go:43 'dispatching' log_context: {"route":"home"}

When SENTRY_DSN is set, [New] returns a [SentryLogger]
which also reports ERROR and FATAL messages, with their [LogContext], to Sentry.
*/
package logger
