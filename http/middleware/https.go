package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/xy-planning-network/trailrunner"
)

// ForceHTTPS permanently redirects plain HTTP requests to the same URL over HTTPS.
//
// A request counts as HTTPS if it arrived over TLS
// or a proxy in front of the app set "X-Forwarded-Proto" to "https".
//
// In development, NoopAdapter returns and this middleware does nothing.
func ForceHTTPS(env trailrunner.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHTTPS(r) {
				h.ServeHTTP(w, r)
				return
			}

			target := url.URL{
				Scheme:   "https",
				Host:     r.Host,
				Path:     r.URL.Path,
				RawPath:  r.URL.RawPath,
				RawQuery: r.URL.RawQuery,
			}

			http.Redirect(w, r, target.String(), http.StatusPermanentRedirect)
		})
	}
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
