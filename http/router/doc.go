/*
Package router wraps [mux.Router] with the conveniences a trailrunner app needs.

A [Router] leverages a standardized data model - a [Route] -
when registering how requests should be routed.
A path and a set of HTTP methods comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
the Router applies the stack set with OnEveryRequest, logs it,
and then calls any middlewares added to the Route in the order they appear.

Paths use [mux] placeholder syntax, e.g. "/users/{id}" or "/users/{id:[0-9]+}".
[PathArgs] hands a handler those values positionally.
*/
package router
