package runner

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/config"
	"github.com/xy-planning-network/trailrunner/factory"
	"github.com/xy-planning-network/trailrunner/http/middleware"
	"github.com/xy-planning-network/trailrunner/http/req"
	"github.com/xy-planning-network/trailrunner/http/router"
	"github.com/xy-planning-network/trailrunner/http/session"
	"github.com/xy-planning-network/trailrunner/http/template"
	"github.com/xy-planning-network/trailrunner/logger"
	"github.com/xy-planning-network/trailrunner/postgres"
	"golang.org/x/time/rate"
)

const (
	// Base URL defaults
	BaseURLEnvVar  = "BASE_URL"
	defaultBaseURL = "http://" + DefaultHost + DefaultPort + "/"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	defaultSessionName      = "trailrunner"

	// Template defaults
	EngineName = "Engine"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	defaultNotFoundPage = "<h1>Page Not Found</h1>"
)

// An App is a web application run by a *Runner.
type App interface {
	// Init registers the app's handlers, access checks and routes on rn.
	Init(rn *Runner) error
}

// A NotFoundPager is an App rendering its own body for requests no route matches.
type NotFoundPager interface {
	NotFoundPage(c *Context) (string, error)
}

// A Runner loads an app's configuration, routes its requests through access checks to handlers
// and renders handler output into templates.
type Runner struct {
	app        App
	baseURL    *url.URL
	cfg        *config.Store
	db         *postgres.DB
	env        trailrunner.Environment
	l          logger.Logger
	loc        *time.Location
	metrics    *metrics
	metricsReg *prometheus.Registry
	migrations []postgres.Migration
	now        func() time.Time
	parser     *req.Parser
	registry   *factory.Registry
	router     *router.Router
	sessions   session.Storer
	srv        *http.Server
	tmpl       template.Templater
	writable   string

	checks     map[string]CheckFunc
	handlers   map[string]map[string]HandlerFunc
	layout     string
	page       string
	registered bool
	mu         sync.RWMutex
}

// New constructs a *Runner for app.
//
// New loads the config file at cfgPath, checks writableFolder can be written to,
// resolves the timezone, builds the router, connects to the database if [runner] useDatabase is on,
// resolves the template backend and finally calls app.Init.
//
// If the config was already loaded, config.ErrAlreadyLoaded returns.
// If writableFolder cannot be written to, ErrFolderNotWritable returns.
func New(cfgPath, writableFolder string, app App, opts ...Option) (*Runner, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: app cannot be nil", trailrunner.ErrBadConfig)
	}

	rn := &Runner{
		app:      app,
		checks:   make(map[string]CheckFunc),
		handlers: make(map[string]map[string]HandlerFunc),
		now:      time.Now,
		parser:   req.NewParser(),
	}

	for _, opt := range opts {
		opt(rn)
	}

	if rn.cfg == nil {
		rn.cfg = config.New()
	}

	if err := rn.cfg.Load(cfgPath); err != nil {
		return nil, err
	}

	if err := probeWritable(writableFolder); err != nil {
		return nil, err
	}
	rn.writable = writableFolder

	loc, err := rn.cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", trailrunner.ErrBadConfig, err)
	}
	rn.loc = loc

	if rn.env == "" {
		rn.env = trailrunner.EnvVarOrEnv(environmentEnvVar, trailrunner.Development)
	}

	if rn.l == nil {
		rn.l = logger.New(
			logger.WithEnv(rn.env),
			logger.WithLevel(logger.NewLogLevel(os.Getenv(logLevelEnvVar))),
		)
	}

	for _, setup := range []func() error{
		rn.setupBaseURL,
		rn.setupMetrics,
		rn.setupSessions,
		rn.setupRouter,
		rn.setupDB,
		rn.setupTemplater,
		rn.setupServer,
	} {
		if err := setup(); err != nil {
			return nil, err
		}
	}

	if err := app.Init(rn); err != nil {
		return nil, err
	}

	return rn, nil
}

// probeWritable asserts a file can be created in dir.
func probeWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no folder given", ErrFolderNotWritable)
	}

	f, err := os.CreateTemp(dir, ".trailrunner-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFolderNotWritable, err)
	}

	name := f.Name()
	f.Close()
	os.Remove(name)

	return nil
}

func (rn *Runner) setupBaseURL() error {
	if rn.baseURL == nil {
		raw := trailrunner.EnvVarOrString(BaseURLEnvVar, rn.cfg.Get("http", "baseUrl", defaultBaseURL))
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: base URL %q: %s", trailrunner.ErrBadConfig, raw, err)
		}

		rn.baseURL = u
	}

	u := *rn.baseURL
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	rn.baseURL = &u

	return nil
}

func (rn *Runner) setupMetrics() error {
	if rn.metricsReg == nil {
		rn.metricsReg = prometheus.NewRegistry()
	}

	m, err := newMetrics(rn.metricsReg)
	if err != nil {
		return fmt.Errorf("%w: registering metrics: %s", trailrunner.ErrBadConfig, err)
	}
	rn.metrics = m

	return nil
}

func (rn *Runner) setupSessions() error {
	if rn.sessions != nil {
		return nil
	}

	authKey := trailrunner.EnvVarOrString(SessionAuthKeyEnvVar, rn.cfg.Get("session", "authKey", ""))
	encryptKey := trailrunner.EnvVarOrString(SessionEncryptKeyEnvVar, rn.cfg.Get("session", "encryptKey", ""))
	if authKey == "" || encryptKey == "" {
		rn.l.Warn("session keys not configured, generating keys that will not survive a restart", nil)

		var err error
		if authKey, err = randomKey(); err != nil {
			return err
		}

		if encryptKey, err = randomKey(); err != nil {
			return err
		}
	}

	cfg := session.Config{
		Env:           rn.env,
		Name:          rn.cfg.Get("session", "name", defaultSessionName),
		AuthKey:       authKey,
		EncryptKey:    encryptKey,
		RedisAddr:     rn.cfg.Get("session", "redis", ""),
		RedisPassword: rn.cfg.Get("session", "redisPassword", ""),
	}

	if raw := rn.cfg.Get("session", "maxAge", ""); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: session.maxAge %q is not a number", trailrunner.ErrBadConfig, raw)
		}

		cfg.MaxAge = secs
	}

	svc, err := session.NewStore(cfg)
	if err != nil {
		return err
	}
	rn.sessions = svc

	return nil
}

// randomKey generates a hex-encoded 32 byte key.
func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: generating key: %s", trailrunner.ErrUnexpected, err)
	}

	return hex.EncodeToString(b), nil
}

func (rn *Runner) setupRouter() error {
	if rn.router == nil {
		rn.router = router.New(rn.env, middleware.LogRequest(rn.l))
	}

	var mws []middleware.Adapter
	if rn.cfg.Bool("http", "rateLimit") {
		var opts []middleware.VisitorsOption
		if n, err := strconv.Atoi(rn.cfg.Get("http", "rateLimitBurst", "")); err == nil {
			opts = append(opts, middleware.WithBurst(n))
		}

		if n, err := strconv.ParseFloat(rn.cfg.Get("http", "rateLimitPerSecond", ""), 64); err == nil {
			opts = append(opts, middleware.WithRate(rate.Limit(n)))
		}

		mws = append(mws, middleware.RateLimit(middleware.NewVisitors(opts...)))
	}

	if rn.cfg.Bool("http", "forceHttps") {
		mws = append(mws, middleware.ForceHTTPS(rn.env))
	}

	debug := !rn.env.IsProduction()
	if rn.cfg.Get("runner", "debugRender", "") != "" {
		debug = rn.cfg.Bool("runner", "debugRender")
	}

	mws = append(mws,
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.CORS(rn.cfg.Get("http", "corsOrigin", "")),
		middleware.DebugRender(debug),
	)

	if rn.cfg.Bool("session", "eager") {
		mws = append(mws, middleware.InjectSession(rn.sessions, rn.l))
	}

	rn.router.OnEveryRequest(mws...)

	if path := rn.cfg.Get("http", "metricsPath", ""); path != "" {
		rn.router.Handle(router.Route{Path: path, Methods: []string{http.MethodGet}, Handler: rn.metrics.handler()})
	}

	return nil
}

func (rn *Runner) setupDB() error {
	if rn.db != nil || !rn.cfg.Bool("runner", "useDatabase") {
		return nil
	}

	section, err := rn.cfg.Section("database")
	if err != nil {
		return fmt.Errorf("%w: %s", trailrunner.ErrBadConfig, err)
	}

	cxn, err := postgres.NewCxnConfig(section)
	if err != nil {
		return err
	}

	db, err := postgres.Connect(cxn, rn.migrations, rn.l)
	if err != nil {
		return err
	}
	rn.db = db

	return nil
}

func (rn *Runner) setupTemplater() error {
	if rn.tmpl == nil {
		if rn.registry == nil {
			rn.registry = factory.NewRegistry(rn.cfg)
		}

		err := rn.registry.Define(factory.NewCapability[template.Extender, template.Templater](template.CapabilityName))
		if err != nil {
			return err
		}

		err = factory.Register(rn.registry, template.CapabilityName, EngineName, func(params any) (*template.Engine, error) {
			return template.NewEngine(params)
		})
		if err != nil {
			return err
		}

		tmpl, err := factory.Load[template.Templater](rn.registry, template.CapabilityName, false, template.Config{
			WritableFolder: rn.writable,
			CompileDir:     rn.cfg.Get("template", "compileDir", ""),
			ConfigDir:      rn.cfg.Get("template", "configDir", ""),
			CacheDir:       rn.cfg.Get("template", "cacheDir", ""),
			Env:            rn.env,
			RootURL:        rn.baseURL,
		})
		if err != nil {
			return err
		}
		rn.tmpl = tmpl
	}

	if dir := rn.cfg.Get("template", "dir", ""); dir != "" {
		rn.tmpl.SetTemplateDir(dir)
	}

	return nil
}

func (rn *Runner) setupServer() error {
	if rn.srv == nil {
		port := trailrunner.EnvVarOrString(portEnvVar, DefaultPort)
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}

		rn.srv = &http.Server{
			Addr:         trailrunner.EnvVarOrString(hostEnvVar, "") + port,
			ReadTimeout:  trailrunner.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
			IdleTimeout:  trailrunner.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
			WriteTimeout: trailrunner.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
		}
	}

	rn.srv.Handler = rn

	return nil
}

// AccessCheck registers fn as the check called name.
func (rn *Runner) AccessCheck(name string, fn CheckFunc) {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	rn.checks[name] = fn
}

// Handle registers fn as the handler called name for HTTP method,
// e.g., rn.Handle("users", "get", listUsers).
func (rn *Runner) Handle(name, method string, fn HandlerFunc) {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	method = strings.ToLower(method)
	if method == "" {
		method = defaultMethod
	}

	if rn.handlers[name] == nil {
		rn.handlers[name] = make(map[string]HandlerFunc)
	}
	rn.handlers[name][method] = fn
}

// A boundCheck is an accessCheck resolved to its CheckFunc.
type boundCheck struct {
	accessCheck
	fn CheckFunc
}

// RegisterRoutes installs the not found handler and then each of routes on the router.
//
// Every handler and access check a Route names must already be registered,
// otherwise ErrHandlerNotFound or ErrAccessCheckNotFound returns and nothing is installed.
// RegisterRoutes can succeed only once, after which ErrRoutesAlreadyRegistered returns.
func (rn *Runner) RegisterRoutes(routes []Route) error {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	if rn.registered {
		return ErrRoutesAlreadyRegistered
	}

	var resolved []router.Route
	for _, route := range routes {
		var checks []boundCheck
		for _, chk := range parseAccessChecks(route.AccessChecks) {
			fn, ok := rn.checks[chk.name]
			if !ok || fn == nil {
				return fmt.Errorf("%w: %q for %s", ErrAccessCheckNotFound, chk.name, route.Path)
			}

			checks = append(checks, boundCheck{accessCheck: chk, fn: fn})
		}

		for _, method := range parseMethods(route.Methods) {
			fn, ok := rn.handlers[route.Name][method]
			if !ok || fn == nil {
				return fmt.Errorf("%w: %s_%s for %s", ErrHandlerNotFound, route.Name, method, route.Path)
			}

			resolved = append(resolved, router.Route{
				Path:    route.Path,
				Methods: []string{strings.ToUpper(method)},
				Handler: rn.dispatch(route.Name, method, checks, fn),
			})
		}
	}

	rn.router.HandleNotFound(http.HandlerFunc(rn.notFound))
	rn.router.HandleRoutes(resolved)
	rn.registered = true

	return nil
}

// dispatch runs checks left to right, stopping at the first failure,
// then calls h and renders its output into the layout and page templates.
func (rn *Runner) dispatch(name, method string, checks []boundCheck, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		c := rn.newContext(w, r)

		outcome := outcomeOK
		if err := rn.serve(c, checks, h); err != nil {
			outcome = outcomeError
			if errors.Is(err, ErrAccessDenied) {
				outcome = outcomeDenied
			}

			rn.fail(c, name, err)
		}

		rn.metrics.observe(name, method, outcome, time.Since(start))
	})
}

func (rn *Runner) serve(c *Context, checks []boundCheck, h HandlerFunc) error {
	for _, chk := range checks {
		if err := chk.fn(c, chk.args...); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAccessDenied, chk.name, err)
		}
	}

	out, err := h(c, router.PathArgs(c.r)...)
	if err != nil {
		return err
	}

	if c.redirected {
		return nil
	}

	out, err = c.wrap(out)
	if err != nil {
		return err
	}

	_, err = io.WriteString(c.w, out)

	return err
}

// fail logs err and responds with a 500 unless a response has already been started.
func (rn *Runner) fail(c *Context, route string, err error) {
	lc := &logger.LogContext{Error: err, Request: c.r, Route: route}
	if errors.Is(err, ErrAccessDenied) {
		rn.l.Warn(err.Error(), lc)
	} else {
		rn.l.Error(err.Error(), lc)
	}

	if c.w.started {
		return
	}

	http.Error(c.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// notFound responds to requests no route matches with a 404
// and the app's NotFoundPage, if it has one.
func (rn *Runner) notFound(w http.ResponseWriter, r *http.Request) {
	c := rn.newContext(w, r)
	c.SetStatusCode(http.StatusNotFound, "Not Found")

	out := defaultNotFoundPage
	if p, ok := rn.app.(NotFoundPager); ok {
		var err error
		out, err = p.NotFoundPage(c)
		if err != nil {
			rn.l.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
			return
		}
	}

	io.WriteString(c.w, out)
}

// SetLayoutTemplate sets the layout every request starts with.
func (rn *Runner) SetLayoutTemplate(id string) {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	rn.layout = id
}

// SetPageTemplate sets the page every request starts with.
func (rn *Runner) SetPageTemplate(id string) {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	rn.page = id
}

func (rn *Runner) defaultTemplates() (layout, page string) {
	rn.mu.RLock()
	defer rn.mu.RUnlock()

	return rn.layout, rn.page
}

// BaseURL returns the URL redirects resolve against.
func (rn *Runner) BaseURL() *url.URL {
	u := *rn.baseURL
	return &u
}

// Config returns the loaded config.
func (rn *Runner) Config() *config.Store { return rn.cfg }

// DB returns the database handle, which is nil unless the app uses one.
func (rn *Runner) DB() *postgres.DB { return rn.db }

// Env returns the environment the Runner operates in.
func (rn *Runner) Env() trailrunner.Environment { return rn.env }

// Location returns the configured timezone.
func (rn *Runner) Location() *time.Location { return rn.loc }

// Logger returns the Runner's logger.
func (rn *Runner) Logger() logger.Logger { return rn.l }

// Now returns the current time in the configured timezone.
func (rn *Runner) Now() time.Time { return rn.now().In(rn.loc) }

// Router returns the router requests are routed with.
func (rn *Runner) Router() *router.Router { return rn.router }

// Template returns the template backend.
func (rn *Runner) Template() template.Templater { return rn.tmpl }

// ServeHTTP hands a single request to the router.
func (rn *Runner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rn.router.ServeHTTP(w, r)
}
