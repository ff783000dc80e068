package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/roles"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/views"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

// Roles is the admin area for roles and their permissions.
type Roles struct {
	pages *Pages
	roles *roles.Service
}

func NewRoles(pages *Pages, svc *roles.Service) *Roles {
	return &Roles{pages: pages, roles: svc}
}

func (h *Roles) Routes(r examdesk.Router) {
	getPost := []string{http.MethodGet, http.MethodPost}
	r.Group(func(r examdesk.Router) {
		r.Use(examdesk.DenyAccessUnlessGranted(routes.RoleAdmin))
		r.GET(routes.Path(routes.AdminIndex), h.admin)
		r.Match(getPost, routes.Path(routes.AdminRoleIndex), h.index)
		r.POST(routes.Path(routes.AdminRoleNew), h.create)
		r.POST(routes.Path(routes.AdminRoleAddPermission), h.addPermissions)
		r.Match(getPost, routes.Path(routes.AdminRoleShow), h.show)
	})
}

func (h *Roles) admin(c examdesk.Context) error {
	return c.RedirectTo(routes.AdminRoleIndex)
}

func (h *Roles) index(c examdesk.Context) error {
	if c.IsPost() {
		if ids := examdesk.FieldIDs(c, "mark_row"); len(ids) > 0 {
			n, err := h.roles.Delete(c, ids)
			switch {
			case errors.Is(err, roles.ErrInUse):
				c.SetFlash("role_in_use", examdesk.FlashDanger)
			case err != nil:
				return err
			default:
				c.LogInfo("roles removed", "count", n)
				c.SetFlash("roles_removed", examdesk.FlashSuccess)
			}
		}
		return c.RedirectTo(routes.AdminRoleIndex)
	}

	list, err := h.roles.List(c)
	if err != nil {
		return err
	}
	return h.pages.Render(c, c.T("role.title"), func(l views.Layout) templ.Component {
		return views.RoleIndex(l, list)
	})
}

func (h *Roles) show(c examdesk.Context) error {
	id, err := examdesk.ParamID(c, "id")
	if err != nil {
		return h.notFound(c)
	}
	details, err := h.roles.Show(c, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return h.notFound(c)
		}
		return err
	}

	if c.IsPost() {
		if ids := examdesk.FieldIDs(c, "mark_row"); len(ids) > 0 {
			if _, err := h.roles.Revoke(c, id, ids); err != nil {
				return err
			}
			c.SetFlash("permissions_removed", examdesk.FlashSuccess)
		}
		return c.RedirectTo(routes.AdminRoleShow, id)
	}

	return h.pages.Render(c, details.Role.Label, func(l views.Layout) templ.Component {
		return views.RoleShow(l, details)
	})
}

func (h *Roles) create(c examdesk.Context) error {
	role, err := h.roles.Create(c, roles.CreateRequest{
		Label:       c.Field("label"),
		Description: c.Field("description"),
	})
	switch {
	case err == nil:
		c.LogInfo("role created", "role_id", role.ID)
		c.SetFlash("role_created", examdesk.FlashSuccess)
	case errors.Is(err, roles.ErrLabelTaken):
		c.SetFlash("role_label_taken", examdesk.FlashDanger)
	case validator.IsValidationError(err):
		c.SetFlash("role_invalid", examdesk.FlashDanger)
	default:
		return err
	}
	return c.RedirectTo(routes.AdminRoleIndex)
}

func (h *Roles) addPermissions(c examdesk.Context) error {
	roleID, err := strconv.ParseInt(c.Field("role_id"), 10, 64)
	if err != nil || roleID <= 0 {
		return h.notFound(c)
	}

	n, err := h.roles.Grant(c, roleID, examdesk.FieldIDs(c, "permissions"))
	if err != nil {
		if repository.IsNotFound(err) {
			return h.notFound(c)
		}
		return err
	}
	if n > 0 {
		c.SetFlash("permissions_added", examdesk.FlashSuccess)
	}
	return c.RedirectTo(routes.AdminRoleShow, roleID)
}

func (h *Roles) notFound(c examdesk.Context) error {
	c.SetFlash("role_not_found", examdesk.FlashDanger)
	return c.RedirectTo(routes.AdminRoleIndex)
}
