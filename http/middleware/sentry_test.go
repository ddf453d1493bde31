package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/middleware"
)

func TestReportPanic(t *testing.T) {
	// Arrange + Act
	actual := middleware.ReportPanic(trailrunner.Development)

	// Assert
	require.Equal(t, fmt.Sprintf("%p", middleware.NoopAdapter), fmt.Sprintf("%p", actual))

	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	h := middleware.ReportPanic(trailrunner.Testing)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("oops")
	}))

	// Act + Assert
	require.NotPanics(t, func() { h.ServeHTTP(w, r) })
}
