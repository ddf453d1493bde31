package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/session"
	"github.com/xy-planning-network/trailrunner/logger"
)

// InjectSession loads the request's session from store before the handler runs,
// putting it in the request context under trailrunner.SessionKey.
// A cookie store can no longer decode, as after a key rotation, is replaced by a fresh session
// and the failure logged to l at WARN.
// A session that fails to load at all is left out, for whoever needs it to discover.
//
// With a nil store, InjectSession is the NoopAdapter.
func InjectSession(store session.Storer, l logger.Logger) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := store.GetSession(r)
			if err != nil && l != nil && s.Started() {
				l.Warn("discarding undecodable session", &logger.LogContext{Error: err, Request: r})
			}

			if s.Started() {
				r = r.WithContext(context.WithValue(r.Context(), trailrunner.SessionKey, s))
			}

			h.ServeHTTP(w, r)
		})
	}
}
