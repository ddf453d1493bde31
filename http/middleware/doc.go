/*
Package middleware holds the http.Handler wrappers a trailrunner app is served through.

Each is an [Adapter], and [Chain] applies them outermost first.
The runner builds its chain from the [http] and [session] sections of its config;
without one, a similar chain looks like

	h = middleware.Chain(h,
		middleware.RateLimit(middleware.NewVisitors(middleware.WithBurst(40))),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.CORS("https://example.com"),
		middleware.DebugRender(!env.IsProduction()),
		middleware.InjectSession(store, log),
	)

[ReportPanic] sends panics to Sentry, and [LogRequest] logs each request through a logger.Logger.
*/
package middleware
