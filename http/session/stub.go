package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// A Stub is an in-memory Storer and gorilla.Store
// handing out the same session to every request.
type Stub struct {
	s *gorilla.Session
}

// NewStub constructs a *Stub holding an empty session.
func NewStub() *Stub {
	s := new(Stub)
	s.s = gorilla.NewSession(s, "stub")
	s.s.Options = &gorilla.Options{Path: "/", MaxAge: DefaultMaxAge}

	return s
}

func (s *Stub) GetSession(r *http.Request) (Session, error) { return Session{s.s}, nil }

func (s *Stub) Get(r *http.Request, name string) (*gorilla.Session, error)               { return s.s, nil }
func (s *Stub) New(r *http.Request, name string) (*gorilla.Session, error)               { return s.s, nil }
func (s *Stub) Save(r *http.Request, w http.ResponseWriter, sess *gorilla.Session) error { return nil }
