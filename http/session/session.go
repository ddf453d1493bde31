package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// A Session holds the values a client carries from request to request.
// Every change is saved to the store right away.
type Session struct {
	s *gorilla.Session
}

// NewSession wraps g.
func NewSession(g *gorilla.Session) Session { return Session{s: g} }

// Started reports whether s holds a session at all.
// A store that cannot decode a request's cookie still starts a fresh one.
func (s Session) Started() bool { return s.s != nil }

// IsNew reports whether the session was created by this request.
func (s Session) IsNew() bool { return s.s.IsNew }

// Value returns the value stored under key and whether one is.
func (s Session) Value(key string) (any, bool) {
	val, ok := s.s.Values[key]
	return val, ok
}

// Set stores val under key.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// Unset removes keys.
func (s Session) Unset(w http.ResponseWriter, r *http.Request, keys ...string) error {
	for _, key := range keys {
		delete(s.s.Values, key)
	}

	return s.Save(w, r)
}

// Delete expires the session and forgets its values.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	for key := range s.s.Values {
		delete(s.s.Values, key)
	}

	s.s.Options.MaxAge = -1

	return s.Save(w, r)
}

// Save writes the session to its store, refreshing its expiry.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }
