package middleware

import (
	"net/http"
	"strings"

	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/logger"
)

// LogMaskVal replaces the values of sensitive query parameters in logs.
const LogMaskVal = "xxxxxxx"

// LogRequest logs the request's method, requested URL, and originating IP address
// using the enclosed implementation of logger.Logger.
//
// LogRequest scrubs the values for the following keys:
// - password
//
// if logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ls.Info(requestLine(r), &logger.LogContext{Request: r})
			h.ServeHTTP(w, r)
		})
	}
}

// requestLine formats r as "[ip] [request id] METHOD /uri?query".
func requestLine(r *http.Request) string {
	uri := r.URL.Path
	q := r.URL.Query()
	if val := q.Get("password"); val != "" {
		q.Set("password", LogMaskVal)
	}

	if query := q.Encode(); query != "" {
		uri += "?" + query
	}

	strs := []string{r.Method, uri}
	if id, ok := r.Context().Value(trailrunner.RequestIDKey).(string); ok && id != "" {
		strs = append([]string{id}, strs...)
	}

	if ip, ok := r.Context().Value(trailrunner.IpAddrKey).(string); ok && ip != "" {
		strs = append([]string{ip}, strs...)
	}

	return strings.Join(strs, " ")
}
