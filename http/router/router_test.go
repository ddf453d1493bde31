package router_test

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/middleware"
	"github.com/xy-planning-network/trailrunner/http/router"
	"github.com/xy-planning-network/trailrunner/logger"
)

func echoArgs() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Join(router.PathArgs(r), ","))
	})
}

func TestRouterHandleRoutes(t *testing.T) {
	tcs := []struct {
		name     string
		method   string
		target   string
		code     int
		expected string
	}{
		{"get", http.MethodGet, "/users/1/posts/hello", http.StatusOK, "1,hello"},
		{"post", http.MethodPost, "/users/1/posts/hello", http.StatusOK, "1,hello"},
		{"wrong-method", http.MethodDelete, "/users/1/posts/hello", http.StatusMethodNotAllowed, ""},
		{"regex-miss", http.MethodGet, "/users/abc/posts/hello", http.StatusNotFound, "404 page not found\n"},
		{"any-method", http.MethodPatch, "/ping", http.StatusOK, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := router.New(trailrunner.Testing, nil)
			r.HandleRoutes([]router.Route{
				{Path: "/users/{id:[0-9]+}/posts/{slug}", Methods: []string{http.MethodGet, http.MethodPost}, Handler: echoArgs()},
				{Path: "/ping", Handler: echoArgs()},
			})
			w := httptest.NewRecorder()

			// Act
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.target, nil))

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.expected, w.Body.String())
		})
	}
}

func TestRouterHandleNotFound(t *testing.T) {
	// Arrange
	r := router.New(trailrunner.Testing, nil)
	r.HandleNotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "nothing here")
	}))
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	// Assert
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "nothing here", w.Body.String())
}

func TestRouterMiddlewareOrder(t *testing.T) {
	// Arrange
	var order []string
	mark := func(name string) middleware.Adapter {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				h.ServeHTTP(w, r)
			})
		}
	}

	color.NoColor = true
	b := new(bytes.Buffer)
	l := logger.NewStdLogger(logger.WithLogger(log.New(b, "", 0)))

	r := router.New(trailrunner.Testing, middleware.LogRequest(l))
	r.OnEveryRequest(mark("every"))
	r.HandleRoutes(
		[]router.Route{{
			Path:        "/",
			Handler:     http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
			Middlewares: []middleware.Adapter{mark("route")},
		}},
		mark("group"),
	)

	// Act
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, []string{"every", "group", "route", "handler"}, order)
	require.Contains(t, b.String(), "GET /")
}

func TestRouterSubrouter(t *testing.T) {
	// Arrange
	r := router.New(trailrunner.Testing, nil)
	r.Subrouter("/api/v1").Handle(router.Route{Path: "/users/{id}", Methods: []string{http.MethodGet}, Handler: echoArgs()})
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/7", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "7", w.Body.String())
}

func TestRouterCatchAll(t *testing.T) {
	// Arrange
	r := router.New(trailrunner.Testing, nil)
	r.CatchAll(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything/at/all", nil))

	// Assert
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPathArgsNoRoute(t *testing.T) {
	require.Nil(t, router.PathArgs(httptest.NewRequest(http.MethodGet, "/", nil)))
}
