package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/pkg/session"
)

type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

var testRoutes = internal.RouteTable{
	"app_index": "/",
	"login":     "/login",
	"secret":    "/secret",
}

func newTestApp(t *testing.T, routes routesFunc, opts ...internal.Option) *internal.App {
	t.Helper()
	base := []internal.Option{
		internal.WithRoutes(testRoutes),
		internal.WithSession(session.NewMemoryStore()),
		internal.WithHandlers(routes),
	}
	return internal.New(append(base, opts...)...)
}

func serve(app http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the last session cookie set on rec, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "examdesk_sid" {
			found = c
		}
	}
	return found
}
