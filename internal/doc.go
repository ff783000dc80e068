// Package internal is the HTTP core of examdesk: the application type, the
// per-request Context, the chi-backed router, named routes, server-side
// sessions with the login identity, flash messages, CSRF tokens and the
// access guards used as route middleware.
//
// Handlers declare routes on a Router and return errors instead of writing
// error responses themselves:
//
//	func (h *Exams) Routes(r internal.Router) {
//		r.GET("/exams/{id}", h.show)
//	}
//
//	func (h *Exams) show(c internal.Context) error {
//		id, err := internal.ParamID(c, "id")
//		if err != nil {
//			return c.RedirectTo(routes.AppIndex)
//		}
//		...
//		return c.Render(http.StatusOK, views.ExamShow(data))
//	}
//
// One Context is created per request and shared by every middleware and the
// handler, so a session loaded by the CSRF check is not loaded again.
package internal
