package handlers

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/auth"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/views"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

// Auth logs users in and out.
type Auth struct {
	pages *Pages
	auth  *auth.Service
}

func NewAuth(pages *Pages, svc *auth.Service) *Auth {
	return &Auth{pages: pages, auth: svc}
}

func (h *Auth) Routes(r examdesk.Router) {
	r.Match([]string{http.MethodGet, http.MethodPost}, routes.Path(routes.Login), h.login)
	r.POST(routes.Path(routes.Logout), h.logout)
}

func (h *Auth) login(c examdesk.Context) error {
	if !c.IsPost() {
		if c.IsAuthenticated() {
			return c.RedirectTo(routes.AppIndex)
		}
		return h.pages.Render(c, c.T("auth.title"), func(l views.Layout) templ.Component {
			return views.Login(l, c.Query("username"))
		})
	}

	identity, err := h.auth.Authenticate(c, auth.LoginRequest{
		Username: c.Field("username"),
		Password: c.Field("password"),
	})
	switch {
	case err == nil:
	case validator.IsValidationError(err):
		c.SetFlash("login_invalid", examdesk.FlashDanger)
		return c.RedirectTo(routes.Login)
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.LogInfo("login failed", "username", c.Field("username"))
		c.SetFlash("login_failed", examdesk.FlashDanger)
		return c.RedirectTo(routes.Login)
	default:
		return err
	}

	if err := c.Login(*identity); err != nil {
		return err
	}
	c.LogInfo("logged in", "user_id", identity.UserID)
	c.SetFlash("logged_in", examdesk.FlashSuccess)
	return c.RedirectTo(routes.AppIndex)
}

func (h *Auth) logout(c examdesk.Context) error {
	if err := c.Logout(); err != nil {
		return err
	}
	c.SetFlash("logged_out", examdesk.FlashInfo)
	return c.RedirectTo(routes.AppIndex)
}
