package trailrunner

type Key string

const (
	// DebugRenderKey flags a request asking for rendered templates to be outlined.
	DebugRenderKey Key = "DebugRenderKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled by trailrunner.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "trailrunner context key: " + string(k)
}
