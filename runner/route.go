package runner

import "strings"

// defaultMethod is used by a Route that does not name any methods.
const defaultMethod = "get"

// A Route maps a path pattern to a named handler.
//
// Path uses gorilla/mux placeholder syntax, e.g., "/users/{id:[0-9]+}".
// The values of its placeholders are passed to checks and handlers positionally.
//
// AccessChecks is a pipe-delimited list of checks, each optionally followed by colon-delimited arguments,
// e.g., "loggedIn|role:admin:owner".
//
// Methods is a pipe-delimited list of HTTP methods, e.g., "get|post".
// If empty, the Route handles GET requests.
type Route struct {
	Path         string
	AccessChecks string
	Name         string
	Methods      string
}

// A HandlerFunc produces the body of a response to a request.
// The args are the values of the placeholders in the Route's path, in order.
type HandlerFunc func(c *Context, args ...string) (string, error)

// A CheckFunc guards a Route.
// Returning an error stops the request from reaching its handler.
// The args are those written after the check's name in Route.AccessChecks.
type CheckFunc func(c *Context, args ...string) error

// accessCheck is one parsed entry of Route.AccessChecks.
type accessCheck struct {
	name string
	args []string
}

// parseAccessChecks splits raw into its checks, in order.
// Empty entries are skipped.
func parseAccessChecks(raw string) []accessCheck {
	var checks []accessCheck
	for _, entry := range strings.Split(raw, "|") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if parts[0] == "" {
			continue
		}

		checks = append(checks, accessCheck{name: parts[0], args: parts[1:]})
	}

	return checks
}

// parseMethods splits raw into lower cased HTTP methods,
// defaulting to defaultMethod.
func parseMethods(raw string) []string {
	var methods []string
	seen := make(map[string]bool)
	for _, m := range strings.Split(raw, "|") {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}

		seen[m] = true
		methods = append(methods, m)
	}

	if len(methods) == 0 {
		return []string{defaultMethod}
	}

	return methods
}
