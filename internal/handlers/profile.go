package handlers

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/views"
)

// Profile lists the claims of the logged-in user.
type Profile struct {
	pages   *Pages
	catalog *catalog.Service
}

func NewProfile(pages *Pages, svc *catalog.Service) *Profile {
	return &Profile{pages: pages, catalog: svc}
}

func (h *Profile) Routes(r examdesk.Router) {
	r.GET(routes.Path(routes.UserProfileIndex), h.index,
		examdesk.DenyAccessUnlessHasPermission(routes.PermissionShowProfile))
}

func (h *Profile) index(c examdesk.Context) error {
	claims, err := h.catalog.Claims(c, c.Identity().UserID)
	if err != nil {
		return err
	}
	return h.pages.Render(c, c.T("profile.title"), func(l views.Layout) templ.Component {
		return views.Profile(l, claims)
	})
}
