package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRate  rate.Limit = 5
	defaultBurst            = 20
	defaultIdle             = time.Hour
)

// A Visitor pairs a client's token bucket with when it was last seen.
type Visitor struct {
	LastSeen time.Time
	Limiter  *rate.Limiter
}

// Visitors tracks a Visitor per client address.
type Visitors struct {
	mu    sync.Mutex
	val   map[string]Visitor
	rate  rate.Limit
	burst int
	idle  time.Duration
	swept time.Time
}

// A VisitorsOption configures Visitors.
type VisitorsOption func(*Visitors)

// WithRate sets how many requests per second each visitor may make on average.
func WithRate(r rate.Limit) VisitorsOption {
	return func(vs *Visitors) {
		if r > 0 {
			vs.rate = r
		}
	}
}

// WithBurst sets how many requests a visitor may make at once.
func WithBurst(n int) VisitorsOption {
	return func(vs *Visitors) {
		if n > 0 {
			vs.burst = n
		}
	}
}

// WithIdle sets how long a visitor goes unseen before it is forgotten.
func WithIdle(d time.Duration) VisitorsOption {
	return func(vs *Visitors) {
		if d > 0 {
			vs.idle = d
		}
	}
}

// NewVisitors constructs an empty *Visitors.
// Without options, visitors average 5 requests a second with bursts of 20 and are forgotten after an hour.
func NewVisitors(opts ...VisitorsOption) *Visitors {
	vs := &Visitors{
		val:   make(map[string]Visitor),
		rate:  defaultRate,
		burst: defaultBurst,
		idle:  defaultIdle,
		swept: time.Now(),
	}

	for _, opt := range opts {
		opt(vs)
	}

	return vs
}

// Len reports how many visitors are tracked.
func (vs *Visitors) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	return len(vs.val)
}

// Fetch retrieves the Visitor for ip, creating one on first sight.
func (vs *Visitors) Fetch(ip string) Visitor {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	v, ok := vs.val[ip]
	if !ok {
		v = Visitor{Limiter: rate.NewLimiter(vs.rate, vs.burst)}
	}

	v.LastSeen = time.Now().UTC()
	vs.val[ip] = v
	return v
}

// sweep forgets idle visitors, at most once per idle period.
func (vs *Visitors) sweep(now time.Time) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if now.Sub(vs.swept) < vs.idle {
		return
	}

	vs.swept = now
	for ip, v := range vs.val {
		if now.Sub(v.LastSeen) > vs.idle {
			delete(vs.val, ip)
		}
	}
}

// RateLimit rejects requests with 429 Too Many Requests once the client's bucket in visitors runs dry.
// Clients are told when to come back through the "Retry-After" header.
func RateLimit(visitors *Visitors) Adapter {
	retry := strconv.Itoa(retryAfter(visitors.rate))

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitors.sweep(time.Now().UTC())

			if !visitors.Fetch(ClientIP(r)).Limiter.Allow() {
				w.Header().Set("Retry-After", retry)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}

// retryAfter is the whole seconds until a drained bucket refilled at r holds a token.
func retryAfter(r rate.Limit) int {
	secs := int(math.Ceil(1/float64(r) - 1e-9))
	if secs < 1 {
		return 1
	}

	return secs
}
