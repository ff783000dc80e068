package handlers

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/views"
)

// Catalog serves the public exam lists and exam details.
type Catalog struct {
	pages   *Pages
	catalog *catalog.Service
}

func NewCatalog(pages *Pages, svc *catalog.Service) *Catalog {
	return &Catalog{pages: pages, catalog: svc}
}

func (h *Catalog) Routes(r examdesk.Router) {
	r.GET(routes.Path(routes.ExamList), h.list)
	r.GET(routes.Path(routes.ExamShow), h.show)
}

func (h *Catalog) list(c examdesk.Context) error {
	id, err := examdesk.ParamID(c, "id")
	if err != nil {
		return h.missing(c, "subject_not_found")
	}
	exams, err := h.catalog.Subject(c, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return h.missing(c, "subject_not_found")
		}
		return err
	}
	return h.pages.Render(c, exams.Subject.Label, func(l views.Layout) templ.Component {
		return views.ExamList(l, exams)
	})
}

func (h *Catalog) show(c examdesk.Context) error {
	id, err := examdesk.ParamID(c, "id")
	if err != nil {
		return h.missing(c, "exam_not_found")
	}
	details, err := h.catalog.Exam(c, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return h.missing(c, "exam_not_found")
		}
		return err
	}

	canClaim := c.Can(routes.PermissionCreateKeyQuestion) &&
		keyquestion.Eligible(&details.Exam.Exam, c.Identity(), h.pages.Now())
	title := details.Exam.TopicTitle
	return h.pages.Render(c, title, func(l views.Layout) templ.Component {
		return views.ExamShow(l, views.ExamShowData{ExamDetails: details, CanClaim: canClaim})
	})
}

func (h *Catalog) missing(c examdesk.Context, flash string) error {
	c.SetFlash(flash, examdesk.FlashDanger)
	return c.RedirectTo(routes.AppIndex)
}
