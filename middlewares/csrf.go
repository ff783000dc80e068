package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/examdesk/internal"
)

// ErrorCodeCSRF marks a rejected state-changing request.
const ErrorCodeCSRF = "csrf_invalid"

// CSRF rejects POST, PUT, PATCH and DELETE requests whose token does not
// match the session's. The token is read from the form field, then the
// header sent by htmx.
func CSRF() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			token := c.Request().PostFormValue(internal.CSRFFieldName)
			if token == "" {
				token = c.Header(internal.CSRFHeaderName)
			}
			if !internal.VerifyCSRF(c, token) {
				c.LogWarn("csrf token mismatch", "path", c.Request().URL.Path)
				return internal.ErrForbidden("invalid csrf token").WithErrorCode(ErrorCodeCSRF)
			}
			return next(c)
		}
	}
}
