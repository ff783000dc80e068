package examdesk

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/pkg/cookie"
	"github.com/dmitrymomot/examdesk/pkg/health"
	"github.com/dmitrymomot/examdesk/pkg/job"
	"github.com/dmitrymomot/examdesk/pkg/logger"
	"github.com/dmitrymomot/examdesk/pkg/session"
)

// Type aliases - public API
type (
	// App holds routing, middleware and request services.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	HandlerFunc  = internal.HandlerFunc
	Middleware   = internal.Middleware
	ErrorHandler = internal.ErrorHandler
	Option       = internal.Option
	RunOption    = internal.RunOption
	HealthOption = internal.HealthOption

	// Component is anything renderable; templ components satisfy it.
	Component = internal.Component

	// Identity is the logged-in user snapshot kept in the session.
	Identity = internal.Identity

	// RouteTable maps route names to chi patterns.
	RouteTable = internal.RouteTable

	// Flash is a one-shot message for the next page.
	Flash = internal.Flash

	HTTPError     = internal.HTTPError
	SessionOption = internal.SessionOption
	SessionStore  = session.Store
)

// Flash kinds.
const (
	FlashSuccess = internal.FlashSuccess
	FlashInfo    = internal.FlashInfo
	FlashWarning = internal.FlashWarning
	FlashDanger  = internal.FlashDanger
)

// New creates an application.
//
//	app := examdesk.New(
//	    examdesk.WithRoutes(routes.Table),
//	    examdesk.WithSession(store),
//	    examdesk.WithHandlers(handlers.NewCatalog(svc)),
//	)
//	err := app.Run(":8080", examdesk.ShutdownHook(db.Shutdown(pool)))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }
func WithHandlers(h ...Handler) Option       { return internal.WithHandlers(h...) }
func WithRoutes(t RouteTable) Option         { return internal.WithRoutes(t) }
func WithErrorHandler(h ErrorHandler) Option { return internal.WithErrorHandler(h) }
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}
func WithLogger(l *slog.Logger) Option     { return internal.WithLogger(l) }
func WithCookieJar(jar *cookie.Jar) Option { return internal.WithCookieJar(jar) }
func WithJobs(m *job.Manager) Option       { return internal.WithJobs(m) }
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithStaticFiles serves fsys/subDir under pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithSession enables server-side sessions backed by store.
func WithSession(store session.Store, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

func WithSessionCookieName(name string) SessionOption { return internal.WithSessionCookieName(name) }
func WithSessionTTL(ttl time.Duration) SessionOption  { return internal.WithSessionTTL(ttl) }
func WithSessionCookieJar(jar *cookie.Jar) SessionOption {
	return internal.WithSessionCookieJar(jar)
}

func ShutdownTimeout(d time.Duration) RunOption             { return internal.ShutdownTimeout(d) }
func StartupHook(fn func(context.Context) error) RunOption  { return internal.StartupHook(fn) }
func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }
func WithContext(ctx context.Context) RunOption             { return internal.WithContext(ctx) }

// Guards

// DenyAccessUnlessGranted redirects to app_index unless the role matches.
func DenyAccessUnlessGranted(role string) Middleware {
	return internal.DenyAccessUnlessGranted(role)
}

// DenyAccessUnlessHasPermission redirects unless the permission is held.
func DenyAccessUnlessHasPermission(permission string, fallback ...string) Middleware {
	return internal.DenyAccessUnlessHasPermission(permission, fallback...)
}

func RequireAuthentication(route string) Middleware { return internal.RequireAuthentication(route) }

// Helpers

func ParamID(c Context, name string) (int64, error) { return internal.ParamID(c, name) }
func FieldIDs(c Context, name string) []int64       { return internal.FieldIDs(c, name) }

// FromContext returns the request Context carried by ctx.
func FromContext(ctx context.Context) (Context, bool) { return internal.FromContext(ctx) }

// IdentityExtractor adds user_id to request log records.
func IdentityExtractor() logger.ContextExtractor { return internal.IdentityExtractor() }

// Errors

func NewHTTPError(code int, message string) *HTTPError { return internal.NewHTTPError(code, message) }
func ErrNotFound(message string) *HTTPError            { return internal.ErrNotFound(message) }
func ErrForbidden(message string) *HTTPError           { return internal.ErrForbidden(message) }
func ErrBadRequest(message string) *HTTPError          { return internal.ErrBadRequest(message) }
func StatusCode(err error) int                         { return internal.StatusCode(err) }
func AsHTTPError(err error) (*HTTPError, bool)         { return internal.AsHTTPError(err) }
