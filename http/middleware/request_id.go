package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailrunner"
)

// RequestIDHeader carries a request's ID in and out.
const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an ID under trailrunner.RequestIDKey
// and echoes it back in the RequestIDHeader of the response.
// An incoming RequestIDHeader holding a UUID is kept, letting a proxy's ID follow the request.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
			if err != nil {
				id = uuid.New()
			}

			w.Header().Set(RequestIDHeader, id.String())
			ctx := context.WithValue(r.Context(), trailrunner.RequestIDKey, id.String())
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
