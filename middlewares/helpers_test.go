package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/pkg/session"
)

type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

// newApp mounts h at GET and POST /, wrapped in mw.
func newApp(h internal.HandlerFunc, mw ...internal.Middleware) *internal.App {
	return internal.New(
		internal.WithRoutes(internal.RouteTable{"app_index": "/"}),
		internal.WithSession(session.NewMemoryStore()),
		internal.WithMiddleware(mw...),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			return c.String(internal.StatusCode(err), err.Error())
		}),
		internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.Match([]string{http.MethodGet, http.MethodPost}, "/", h)
			r.GET("/token", func(c internal.Context) error {
				return c.String(http.StatusOK, c.CSRFToken())
			})
		})),
	)
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
