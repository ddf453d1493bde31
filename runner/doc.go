/*
Package runner wires a trailrunner app together and routes its requests.

[New] loads the app's ini config, resolves the template backend through package factory
and hands the [*Runner] to the app's Init, which registers handlers, access checks and routes:

	func (a *app) Init(rn *runner.Runner) error {
		rn.AccessCheck("loggedIn", a.loggedIn)
		rn.Handle("users", "get", a.listUsers)
		rn.Handle("users", "post", a.createUser)

		return rn.RegisterRoutes([]runner.Route{
			{Path: "/users", AccessChecks: "loggedIn", Name: "users", Methods: "get|post"},
		})
	}

A request matching a [Route] runs through its access checks from left to right.
The first check returning an error stops the request.
Otherwise, the handler's output is rendered into the layout template,
and the layout's output into the page template.
Either template can be changed or turned off per request through the [*Context].

Requests no Route matches get a 404 and the app's NotFoundPage, if it is a [NotFoundPager].
*/
package runner
