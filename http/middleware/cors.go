package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

var corsMethods = []string{
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
}

// CORS answers cross-origin requests from any of the comma-separated origins.
// Routes behind it must also accept http.MethodOptions for preflight requests to reach it.
//
// With no origins, CORS is the NoopAdapter.
func CORS(origins string) Adapter {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, o)
		}
	}

	if len(allowed) == 0 {
		return NoopAdapter
	}

	return handlers.CORS(
		handlers.AllowedOrigins(allowed),
		handlers.AllowedMethods(corsMethods),
		handlers.AllowedHeaders([]string{"Content-Type", "X-CSRF-Token", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
		handlers.AllowCredentials(),
	)
}
