package internal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/examdesk/pkg/cookie"
	"github.com/dmitrymomot/examdesk/pkg/health"
	"github.com/dmitrymomot/examdesk/pkg/job"
	"github.com/dmitrymomot/examdesk/pkg/logger"
)

// App holds the router and the request-scoped services handlers reach
// through Context. It is immutable after New.
type App struct {
	router          chi.Router
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	logger          *slog.Logger
	cookies         *cookie.Jar
	sessions        *SessionManager
	jobs            *job.Manager
	health          *healthConfig
	routes          RouteTable
	middlewares     []Middleware
	handlers        []Handler
	staticRoutes    []staticRoute
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an application from opts.
//
//	app := examdesk.New(
//	    examdesk.WithRoutes(routes.Table),
//	    examdesk.WithSession(store),
//	    examdesk.WithHandlers(handlers.NewCatalog(svc)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:  chi.NewRouter(),
		logger:  logger.NewNope(),
		cookies: cookie.New(),
		routes:  RouteTable{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// ServeHTTP attaches a fresh Context to the request and dispatches it.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r, a)
	a.router.ServeHTTP(c.writer, c.request)
	if !c.writer.Written() && c.session != nil {
		// Nothing was written, but the session may still hold changes.
		c.writer.WriteHeader(http.StatusOK)
	}
}

// Router exposes the chi router for tests and mounting.
func (a *App) Router() chi.Router { return a.router }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Routes returns the named route table.
func (a *App) Routes() RouteTable { return a.routes }

// Jobs returns the job manager or nil.
func (a *App) Jobs() *job.Manager { return a.jobs }

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.adaptHandler(a.notFoundHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks, health.WithLogger(a.logger)))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// handleError passes err to the error handler unless a response was already
// written.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("handler error after response", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		herr := a.errorHandler(c, err)
		if herr == nil {
			return
		}
		c.LogError("error handler failed", slog.Any("error", herr))
	}
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err))
	}
	http.Error(c.Response(), http.StatusText(code), code)
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
