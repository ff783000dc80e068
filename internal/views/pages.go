package views

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/roles"
)

func Home(l Layout) templ.Component {
	return page("home", l, nil)
}

func Login(l Layout, username string) templ.Component {
	return page("login", l, username)
}

func ExamList(l Layout, exams *catalog.SubjectExams) templ.Component {
	return page("exam_list", l, exams)
}

// ExamShowData is an exam with its history. CanClaim shows the claim link.
type ExamShowData struct {
	*catalog.ExamDetails
	CanClaim bool
}

func ExamShow(l Layout, d ExamShowData) templ.Component {
	return page("exam_show", l, d)
}

func Profile(l Layout, claims []repository.Claim) templ.Component {
	return page("profile", l, claims)
}

func KeyQuestionIndex(l Layout, exams []repository.ExamItem) templ.Component {
	return page("key_question_index", l, exams)
}

func ClaimForm(l Layout, exam *repository.ExamItem) templ.Component {
	return page("claim_form", l, exam)
}

func RoleIndex(l Layout, list []*entity.UserRole) templ.Component {
	return page("role_index", l, list)
}

func RoleShow(l Layout, d *roles.Details) templ.Component {
	return page("role_show", l, d)
}

// ErrorData is shown on the error page. Key is a translation key.
type ErrorData struct {
	Key  string
	Code int
}

func Error(l Layout, d ErrorData) templ.Component {
	return page("error", l, d)
}
