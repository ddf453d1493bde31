package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/session"
	"github.com/xy-planning-network/trailrunner/logger"
	"github.com/xy-planning-network/trailrunner/runner"
)

func Test(t *testing.T) {
	// Arrange
	rn, err := runner.New(
		"app.ini",
		t.TempDir(),
		new(app),
		runner.WithEnv(trailrunner.Testing),
		runner.WithLogger(logger.NewStdLogger(logger.WithWriter(io.Discard))),
		runner.WithSessionStore(session.NewStub()),
	)
	require.Nil(t, err)

	// steps share one session, so order matters
	tcs := []struct {
		name     string
		method   string
		target   string
		body     string
		code     int
		location string
		contains string
	}{
		{"home-stranger", http.MethodGet, "/", "", http.StatusOK, "", "Welcome, stranger"},
		{"hello-logged-out", http.MethodGet, "/hello/ada", "", http.StatusFound, "http://localhost:3000/login", ""},
		{"login-form", http.MethodGet, "/login", "", http.StatusOK, "", `<form method="post">`},
		{"login-missing", http.MethodPost, "/login", "user=", http.StatusBadRequest, "", "Who are you?"},
		{"login", http.MethodPost, "/login", "user=ada", http.StatusFound, "http://localhost:3000/", ""},
		{"hello", http.MethodGet, "/hello/ada", "", http.StatusOK, "", "<p>Hello, ada!</p>"},
		{"hello-root", http.MethodGet, "/hello/root", "", http.StatusInternalServerError, "", ""},
		{"home-user", http.MethodGet, "/", "", http.StatusOK, "", "Welcome, ada"},
		{"ping", http.MethodGet, "/ping", "", http.StatusOK, "", `{"pong":true}`},
		{"not-found", http.MethodGet, "/nope", "", http.StatusNotFound, "", "<h1>Nothing at /nope</h1>"},
		{"logout", http.MethodGet, "/logout", "", http.StatusFound, "http://localhost:3000/", ""},
		{"home-logged-out", http.MethodGet, "/", "", http.StatusOK, "", "Welcome, stranger"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}

			r := httptest.NewRequest(tc.method, tc.target, body)
			if body != nil {
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}

			// Act
			rn.ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			require.Contains(t, w.Body.String(), tc.contains)
		})
	}
}
