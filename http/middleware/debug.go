package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/trailrunner"
)

// DebugParam is the query parameter asking for rendered templates to be outlined.
const DebugParam = "debug"

// DebugRender flags requests carrying the DebugParam query parameter
// by setting trailrunner.DebugRenderKey to true in the request context.
//
// If enabled is false, NoopAdapter returns and this middleware does nothing.
func DebugRender(enabled bool) Adapter {
	if !enabled {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !r.URL.Query().Has(DebugParam) {
				h.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), trailrunner.DebugRenderKey, true)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
