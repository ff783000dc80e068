package handlers

import (
	"errors"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/views"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

// KeyQuestion runs the claim workflow. Every route needs the
// create_key_question permission.
type KeyQuestion struct {
	pages    *Pages
	catalog  *catalog.Service
	workflow *keyquestion.Service
}

func NewKeyQuestion(pages *Pages, catalog *catalog.Service, workflow *keyquestion.Service) *KeyQuestion {
	return &KeyQuestion{pages: pages, catalog: catalog, workflow: workflow}
}

func (h *KeyQuestion) Routes(r examdesk.Router) {
	r.Group(func(r examdesk.Router) {
		r.Use(examdesk.DenyAccessUnlessHasPermission(routes.PermissionCreateKeyQuestion))
		r.GET(routes.Path(routes.KeyQuestionIndex), h.index)
		r.GET(routes.Path(routes.KeyQuestionClaim), h.claim)
		r.POST(routes.Path(routes.KeyQuestionTransfer), h.transfer)
	})
}

func (h *KeyQuestion) index(c examdesk.Context) error {
	exams, err := h.catalog.Claimable(c, h.pages.Now())
	if err != nil {
		return err
	}
	return h.pages.Render(c, c.T("key_question.title"), func(l views.Layout) templ.Component {
		return views.KeyQuestionIndex(l, exams)
	})
}

func (h *KeyQuestion) claim(c examdesk.Context) error {
	id, err := examdesk.ParamID(c, "id")
	if err != nil {
		c.SetFlash("exam_not_found", examdesk.FlashDanger)
		return c.RedirectTo(routes.AppIndex)
	}

	_, err = h.workflow.Claim(c, id, c.Identity(), h.pages.Now())
	switch {
	case err == nil:
	case repository.IsNotFound(err):
		c.SetFlash("exam_not_found", examdesk.FlashDanger)
		return c.RedirectTo(routes.AppIndex)
	case errors.Is(err, keyquestion.ErrLocked):
		c.SetFlash("key_question_locked", examdesk.FlashDanger)
		return c.RedirectTo(routes.ExamShow, id)
	default:
		return err
	}

	details, err := h.catalog.Exam(c, id)
	if err != nil {
		return err
	}
	return h.pages.Render(c, c.T("key_question.claim_title"), func(l views.Layout) templ.Component {
		return views.ClaimForm(l, details.Exam)
	})
}

func (h *KeyQuestion) transfer(c examdesk.Context) error {
	examID, _ := strconv.ParseInt(c.Field("exam_id"), 10, 64)
	ok, err := h.workflow.Transfer(c, keyquestion.TransferRequest{
		ExamID:           examID,
		Username:         c.Field("username"),
		Topic:            c.Field("topic"),
		MainSubject:      c.Field("school_subject_1"),
		SecondarySubject: c.Field("school_subject_2"),
		KeyQuestion:      c.Field("key_question"),
	})

	switch field := keyquestion.UnresolvedField(err); {
	case err == nil && ok:
		c.LogInfo("key question sent to clearance", "exam_id", examID)
		c.SetFlash("key_question_send_to_clearance", examdesk.FlashSuccess)
	case err == nil:
		c.SetFlash("key_question_already_claimed", examdesk.FlashWarning)
	case errors.Is(err, keyquestion.ErrLocked):
		c.SetFlash("key_question_locked", examdesk.FlashDanger)
	case field != "":
		c.SetFlash("key_question_unresolved_"+field, examdesk.FlashDanger)
	case validator.IsValidationError(err):
		c.SetFlash("key_question_invalid", examdesk.FlashDanger)
	case repository.IsNotFound(err):
		c.SetFlash("exam_not_found", examdesk.FlashDanger)
	default:
		return err
	}
	return c.RedirectTo(routes.UserProfileIndex)
}
