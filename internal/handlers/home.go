package handlers

import (
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/views"
	"github.com/dmitrymomot/examdesk/middlewares"
	"github.com/dmitrymomot/examdesk/pkg/i18n"
)

// Home serves the start page and the language switch.
type Home struct {
	pages  *Pages
	bundle *i18n.Bundle
}

func NewHome(pages *Pages, bundle *i18n.Bundle) *Home {
	return &Home{pages: pages, bundle: bundle}
}

func (h *Home) Routes(r examdesk.Router) {
	r.GET(routes.Path(routes.AppIndex), h.index)
	r.GET(routes.Path(routes.AppLocale), h.locale)
}

func (h *Home) index(c examdesk.Context) error {
	return h.pages.Render(c, "", func(l views.Layout) templ.Component {
		return views.Home(l)
	})
}

const localeMaxAge = 365 * 24 * 60 * 60

// locale stores the picked language and goes back to the referring page
// of this site.
func (h *Home) locale(c examdesk.Context) error {
	if lang := c.Param("lang"); h.bundle.Supports(lang) {
		c.SetCookie(middlewares.LanguageCookie, lang, localeMaxAge)
	}
	if back := sameSiteReferer(c.Request()); back != "" {
		return c.Redirect(back)
	}
	return c.RedirectTo(routes.AppIndex)
}

func sameSiteReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || ref.Host != r.Host {
		return ""
	}
	back := ref.EscapedPath()
	if ref.RawQuery != "" {
		back += "?" + ref.RawQuery
	}
	return back
}
