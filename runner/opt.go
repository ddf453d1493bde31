package runner

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/config"
	"github.com/xy-planning-network/trailrunner/factory"
	"github.com/xy-planning-network/trailrunner/http/router"
	"github.com/xy-planning-network/trailrunner/http/session"
	"github.com/xy-planning-network/trailrunner/http/template"
	"github.com/xy-planning-network/trailrunner/logger"
	"github.com/xy-planning-network/trailrunner/postgres"
)

// An Option configures a *Runner under construction.
// Options are applied before the config file is loaded.
type Option func(rn *Runner)

// WithBaseURL sets the URL redirects resolve against.
//
// Otherwise, BASE_URL or [http] baseUrl is used, falling back to http://localhost:3000/.
func WithBaseURL(u *url.URL) Option {
	return func(rn *Runner) { rn.baseURL = u }
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(rn *Runner) { rn.now = now }
}

// WithConfig sets the *config.Store the config file is loaded into.
func WithConfig(cfg *config.Store) Option {
	return func(rn *Runner) { rn.cfg = cfg }
}

// WithDB sets an already connected database, skipping [runner] useDatabase.
func WithDB(db *postgres.DB) Option {
	return func(rn *Runner) { rn.db = db }
}

// WithEnv sets the environment the Runner operates in.
//
// Otherwise, ENVIRONMENT is read, falling back to trailrunner.Development.
func WithEnv(env trailrunner.Environment) Option {
	return func(rn *Runner) { rn.env = env }
}

// WithLogger sets the logger.Logger the Runner and its middlewares log with.
func WithLogger(l logger.Logger) Option {
	return func(rn *Runner) { rn.l = l }
}

// WithMetricsRegistry sets the registry dispatch metrics are registered with.
//
// Otherwise, a fresh *prometheus.Registry is used.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(rn *Runner) { rn.metricsReg = reg }
}

// WithMigrations sets the migrations run when connecting to the database.
func WithMigrations(migrations ...postgres.Migration) Option {
	return func(rn *Runner) { rn.migrations = append(rn.migrations, migrations...) }
}

// WithRegistry sets the *factory.Registry the template backend is resolved from.
// The Runner defines the Template capability on it and registers *template.Engine as "Engine".
func WithRegistry(reg *factory.Registry) Option {
	return func(rn *Runner) { rn.registry = reg }
}

// WithRouter sets the *router.Router requests are routed with.
func WithRouter(r *router.Router) Option {
	return func(rn *Runner) { rn.router = r }
}

// WithServer sets the *http.Server Run listens with.
// Its Handler is replaced by the Runner.
func WithServer(srv *http.Server) Option {
	return func(rn *Runner) { rn.srv = srv }
}

// WithSessionStore sets where sessions are kept.
//
// Otherwise, a store is built from the [session] section.
func WithSessionStore(store session.Storer) Option {
	return func(rn *Runner) { rn.sessions = store }
}

// WithTemplater sets the template backend, skipping the factory.
func WithTemplater(tmpl template.Templater) Option {
	return func(rn *Runner) { rn.tmpl = tmpl }
}
