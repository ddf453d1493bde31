package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/trailrunner"
)

// ReportPanic recovers and reports panics to Sentry
// unless env is trailrunner.Development,
// where panics are left alone so they surface in the terminal.
func ReportPanic(env trailrunner.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler { return sh.Handle(h) }
}
