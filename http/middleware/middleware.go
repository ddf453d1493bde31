package middleware

import "net/http"

// An Adapter wraps an http.Handler with behavior that runs around it.
type Adapter func(http.Handler) http.Handler

// Chain wraps handler in adapters so that the first adapter sees the request first.
func Chain(handler http.Handler, adapters ...Adapter) http.Handler {
	for i := len(adapters) - 1; i >= 0; i-- {
		if adapters[i] == nil {
			continue
		}

		handler = adapters[i](handler)
	}

	return handler
}

// NoopAdapter returns h as is.
func NoopAdapter(h http.Handler) http.Handler { return h }
