package middleware_test

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/middleware"
	"github.com/xy-planning-network/trailrunner/http/session"
	"github.com/xy-planning-network/trailrunner/logger"
)

var errUndecodable = errors.New("securecookie: the value is not valid")

// brokenStore cannot produce a session at all.
type brokenStore struct{}

func (brokenStore) GetSession(*http.Request) (session.Session, error) {
	return session.Session{}, errUndecodable
}

// staleStore hands out a fresh session alongside the error decoding the old one.
type staleStore struct{ *session.Stub }

func (s staleStore) GetSession(r *http.Request) (session.Session, error) {
	fresh, _ := s.Stub.GetSession(r)
	return fresh, errUndecodable
}

func TestInjectSession(t *testing.T) {
	tcs := []struct {
		name   string
		store  session.Storer
		ok     bool
		warned bool
	}{
		{"nil", nil, false, false},
		{"stub", session.NewStub(), true, false},
		{"broken", brokenStore{}, false, false},
		{"stale", staleStore{session.NewStub()}, true, true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			b := new(bytes.Buffer)
			l := logger.NewStdLogger(logger.WithLogger(log.New(b, "", 0)))
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
			var ok bool

			// Act
			middleware.InjectSession(tc.store, l)(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
				_, ok = rx.Context().Value(trailrunner.SessionKey).(session.Session)
			})).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.warned, bytes.Contains(b.Bytes(), []byte("[WARN]")))
		})
	}
}
