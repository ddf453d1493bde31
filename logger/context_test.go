package logger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/logger"
)

func TestLogContextMarshalText(t *testing.T) {
	// Arrange
	lc := logger.LogContext{}

	// Act
	b, err := lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, []byte("{}"), b)

	// Arrange
	lc = logger.LogContext{Data: map[string]any{"test": "data"}}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"data":{"test":"data"}}`, string(b))

	// Arrange
	lc = logger.LogContext{Error: errors.New("test"), Route: "home"}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"error":"test","route":"home"}`, string(b))

	// Arrange
	expected := map[string]any{
		"request": map[string]any{
			"method": http.MethodPost,
			"url":    "https://example.com/test?some=param",
			"header": map[string]any{
				"Content-Type": []any{"application/x-www-form-urlencoded"},
			},
			"form": map[string]any{
				"name": []any{"Edmund Husserl"},
				"some": []any{"param"},
			},
		},
	}

	form := url.Values{}
	form.Set("name", "Edmund Husserl")
	r := httptest.NewRequest(http.MethodPost, "https://example.com/test?some=param", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Nil(t, r.ParseForm())
	lc = logger.LogContext{Request: r}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	m := make(map[string]any)
	require.Nil(t, json.Unmarshal(b, &m))
	require.Equal(t, expected, m)
}

func TestLogContextRequestID(t *testing.T) {
	// Arrange
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	r = r.WithContext(context.WithValue(r.Context(), trailrunner.RequestIDKey, "abc-123"))

	// Act
	b, err := logger.LogContext{Request: r}.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Contains(t, string(b), `"request_id":"abc-123"`)
	require.NotContains(t, string(b), `"form"`)
}

func TestLogContextString(t *testing.T) {
	// Arrange
	lc := logger.LogContext{Data: map[string]any{"bad": make(chan int)}}

	// Act + Assert
	require.Equal(t, "", lc.String())
	require.Equal(t, `{"route":"home"}`, logger.LogContext{Route: "home"}.String())
}

func TestCurrentCaller(t *testing.T) {
	// Arrange + Act
	var caller string
	func() { caller = logger.CurrentCaller() }()

	// Assert
	require.Regexp(t, `^logger/context_test\.go:\d+$`, caller)
}
