package runner

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/session"
	"github.com/xy-planning-network/trailrunner/http/template"
	"github.com/xy-planning-network/trailrunner/logger"
	"github.com/xy-planning-network/trailrunner/postgres"
)

// A Context carries a single request through access checks, its handler and templates.
//
// Template choices made on a Context only apply to its request.
// They start from the defaults set on the Runner.
type Context struct {
	runner *Runner
	w      *responseWriter
	r      *http.Request

	layout     string
	page       string
	redirected bool

	sess    *session.Session
	sessErr error
}

func (rn *Runner) newContext(w http.ResponseWriter, r *http.Request) *Context {
	rw, ok := w.(*responseWriter)
	if !ok {
		rw = &responseWriter{ResponseWriter: w}
	}

	layout, page := rn.defaultTemplates()

	return &Context{runner: rn, w: rw, r: r, layout: layout, page: page}
}

// Request returns the *http.Request being handled.
func (c *Context) Request() *http.Request { return c.r }

// ResponseWriter returns the http.ResponseWriter for the request.
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Vars returns the route's path placeholders by name.
func (c *Context) Vars() map[string]string { return mux.Vars(c.r) }

// Template returns the Runner's template backend.
func (c *Context) Template() template.Templater { return c.runner.tmpl }

// DB returns the Runner's database handle, which is nil unless the app uses one.
func (c *Context) DB() *postgres.DB { return c.runner.db }

// Logger returns the Runner's logger.
func (c *Context) Logger() logger.Logger { return c.runner.l }

// Now returns the current time in the Runner's timezone.
func (c *Context) Now() time.Time { return c.runner.Now() }

// SetStatusCode writes code as the response status and flushes the headers.
//
// net/http always sends the standard reason phrase for code,
// so msg is only logged.
func (c *Context) SetStatusCode(code int, msg string) {
	c.runner.l.Debug(fmt.Sprintf("status %d %s", code, msg), &logger.LogContext{Request: c.r})

	c.w.WriteHeader(code)
	c.w.Flush()
}

// Redirect sends a 302 redirect to path, resolved against the Runner's base URL.
//
// Exactly one leading slash is stripped from path first,
// so "/users" and "users" both resolve to "<base URL>users".
//
// Once redirected, whatever the handler returns is discarded.
func (c *Context) Redirect(path string) error {
	target, err := c.runner.resolve(path)
	if err != nil {
		return err
	}

	http.Redirect(c.w, c.r, target, http.StatusFound)
	c.redirected = true

	return nil
}

// SetLayoutTemplate sets the template the handler's output is rendered into.
// An empty id turns the layout off.
func (c *Context) SetLayoutTemplate(id string) { c.layout = id }

// SetPageTemplate sets the template the layout's output is rendered into.
// An empty id turns the page off.
func (c *Context) SetPageTemplate(id string) { c.page = id }

// SetIsAjaxResponse turns off both the layout and page templates,
// so the handler's output is written as is.
func (c *Context) SetIsAjaxResponse() {
	c.layout = ""
	c.page = ""
}

// GetValue returns the query parameter name or def if it is not present.
func (c *Context) GetValue(name, def string) string {
	if vals, ok := c.r.URL.Query()[name]; ok && len(vals) > 0 {
		return vals[0]
	}

	return def
}

// PostValue returns the form value name from the request body or def if it is not present.
func (c *Context) PostValue(name, def string) string {
	if c.r.PostForm == nil {
		if err := c.r.ParseForm(); err != nil {
			return def
		}
	}

	if vals, ok := c.r.PostForm[name]; ok && len(vals) > 0 {
		return vals[0]
	}

	return def
}

// BindQuery decodes the query parameters into structPtr and validates it.
// See package req for the struct tags understood.
func (c *Context) BindQuery(structPtr any) error { return c.runner.parser.ParseQuery(c.r, structPtr) }

// BindForm decodes the form values in the request body into structPtr and validates it.
func (c *Context) BindForm(structPtr any) error { return c.runner.parser.ParseForm(c.r, structPtr) }

// BindJSON decodes the JSON request body into structPtr and validates it.
func (c *Context) BindJSON(structPtr any) error { return c.runner.parser.ParseJSON(c.r.Body, structPtr) }

// SessionValue returns the value stored under name in the session or def if there is none.
func (c *Context) SessionValue(name string, def any) any {
	s, err := c.session()
	if err != nil {
		return def
	}

	if val, ok := s.Value(name); ok {
		return val
	}

	return def
}

// SetSessionValue stores val under name in the session.
func (c *Context) SetSessionValue(name string, val any) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	return s.Set(c.w, c.r, name, val)
}

// UnsetSessionValue removes name from the session.
func (c *Context) UnsetSessionValue(name string) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	return s.Unset(c.w, c.r, name)
}

// session fetches the request's session on first use.
func (c *Context) session() (*session.Session, error) {
	if c.sess != nil || c.sessErr != nil {
		return c.sess, c.sessErr
	}

	if s, ok := c.r.Context().Value(trailrunner.SessionKey).(session.Session); ok {
		c.sess = &s
		return c.sess, nil
	}

	if c.runner.sessions == nil {
		c.sessErr = ErrNoSessionStore
		return nil, c.sessErr
	}

	s, err := c.runner.sessions.GetSession(c.r)
	if err != nil && !s.Started() {
		c.sessErr = fmt.Errorf("%w: %s", trailrunner.ErrUnexpected, err)
		return nil, c.sessErr
	}

	if err != nil {
		c.runner.l.Warn("discarding undecodable session", &logger.LogContext{Error: err, Request: c.r})
	}

	c.sess = &s

	return c.sess, nil
}

// wrap renders out into the layout and then the layout's output into the page,
// skipping whichever is not set.
func (c *Context) wrap(out string) (string, error) {
	for _, id := range []string{c.layout, c.page} {
		if id == "" {
			continue
		}

		var err error
		out, err = c.runner.tmpl.LoadTemplate(c.r.Context(), id, map[string]any{"content": template.Safe(out)}, "")
		if err != nil {
			return "", err
		}
	}

	return out, nil
}

// A responseWriter records whether a response has been started.
type responseWriter struct {
	http.ResponseWriter
	started bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

// Flush sends any buffered data to the client.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the wrapped http.ResponseWriter to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// resolve strips one leading slash from path and resolves it against the base URL.
func (rn *Runner) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")

	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: redirect to %q: %s", trailrunner.ErrNotValid, path, err)
	}

	return rn.baseURL.ResolveReference(ref).String(), nil
}
