package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/xy-planning-network/trailrunner"
)

// unknownIP is reported when no address can be found.
const unknownIP = "0.0.0.0"

// nonPublic lists the ranges, beyond those netip.Addr.IsPrivate knows, a client cannot be in.
var nonPublic = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),  // IETF protocol assignments
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
}

// InjectIPAddress stores the ClientIP of a request in its context under trailrunner.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), trailrunner.IpAddrKey, ClientIP(r))
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// ClientIP finds the address of the client making r.
//
// Proxies append to "X-Forwarded-For" and "X-Real-Ip",
// so each is read right to left and the first public address wins.
// Without one, the address of the connection is used.
func ClientIP(r *http.Request) string {
	for _, header := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		addrs := strings.Split(r.Header.Get(header), ",")
		for i := len(addrs) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(addrs[i]))
			if err == nil && isPublic(addr) {
				return addr.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.String()
	}

	return unknownIP
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}

	for _, p := range nonPublic {
		if p.Contains(addr) {
			return false
		}
	}

	return true
}
