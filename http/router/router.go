package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/middleware"
)

// A Route maps a path and HTTP methods to an [http.Handler].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
//
// A Route without Methods matches every method.
type Route struct {
	Path        string
	Methods     []string
	Handler     http.Handler
	Middlewares []middleware.Adapter
}

// Router routes requests to the handlers registered for their path and method.
type Router struct {
	Env           trailrunner.Environment
	everyReqStack []middleware.Adapter
	logReq        middleware.Adapter
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
// If logReq is nil, requests are not logged.
func New(env trailrunner.Environment, logReq middleware.Adapter) *Router {
	if logReq == nil {
		logReq = middleware.NoopAdapter
	}

	return &Router{logReq: logReq, Env: env, r: mux.NewRouter()}
}

// CatchAll sets up a handler for all routes to funnel to for e.g. maintenance mode.
func (r *Router) CatchAll(handler http.Handler) {
	r.r.PathPrefix("/").Handler(r.chain(handler))
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.Handler] as the default handler
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.Handler) {
	r.r.NotFoundHandler = r.chain(handler)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := append(append([]middleware.Adapter{}, middlewares...), route.Middlewares...)
		mr := r.r.Handle(route.Path, r.chain(route.Handler, mws...))
		if len(route.Methods) > 0 {
			mr.Methods(route.Methods...)
		}
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
//
// Only routes registered afterwards use them.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/api/v1") handles requests to endpoints like /api/v1/users
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:           r.Env,
		r:             r.r.PathPrefix(prefix).Subrouter(),
		logReq:        r.logReq,
		everyReqStack: append([]middleware.Adapter{}, r.everyReqStack...),
	}
}

// chain wraps handler in, from outermost to innermost:
// the every request stack, request logging, mws, and panic reporting.
func (r *Router) chain(handler http.Handler, mws ...middleware.Adapter) http.Handler {
	stack := append(append([]middleware.Adapter{}, r.everyReqStack...), r.logReq)
	stack = append(stack, mws...)
	stack = append(stack, middleware.ReportPanic(r.Env))

	return middleware.Chain(handler, stack...)
}

// PathArgs returns the values of the placeholders in the path of the route matching req
// in the order they appear in its pattern.
//
// e.g., "/users/{id}/posts/{slug}" matching "/users/1/posts/hello" returns ["1", "hello"].
func PathArgs(req *http.Request) []string {
	route := mux.CurrentRoute(req)
	if route == nil {
		return nil
	}

	names, err := route.GetVarNames()
	if err != nil {
		return nil
	}

	vars := mux.Vars(req)
	args := make([]string, 0, len(names))
	for _, name := range names {
		args = append(args, vars[name])
	}

	return args
}
