// Package routes names every route of the application.
package routes

import "github.com/dmitrymomot/examdesk/internal"

const (
	AppIndex               = "app_index"
	AppLocale              = "app_locale"
	Login                  = "authentication_login"
	Logout                 = "authentication_logout"
	ExamList               = "exam_list"
	ExamShow               = "exam_show"
	UserProfileIndex       = "user_profile_index"
	KeyQuestionIndex       = "key_question_index"
	KeyQuestionClaim       = "key_question_claim"
	KeyQuestionTransfer    = "key_question_transfer"
	AdminIndex             = "admin_index"
	AdminRoleIndex         = "admin_role_index"
	AdminRoleNew           = "admin_role_new"
	AdminRoleAddPermission = "admin_role_add_permission"
	AdminRoleShow          = "admin_role_show"
)

// Permissions and roles checked by the guards.
const (
	PermissionShowProfile       = "show_profile"
	PermissionCreateKeyQuestion = "create_key_question"
	RoleAdmin                   = "admin"
)

// Table maps route names to chi patterns.
var Table = internal.RouteTable{
	AppIndex:               "/",
	AppLocale:              "/locale/{lang}",
	Login:                  "/login",
	Logout:                 "/logout",
	ExamList:               "/exams/subject/{id}",
	ExamShow:               "/exams/{id}",
	UserProfileIndex:       "/profile",
	KeyQuestionIndex:       "/profile/key-questions",
	KeyQuestionClaim:       "/profile/key-questions/{id}/claim",
	KeyQuestionTransfer:    "/profile/key-questions/transfer",
	AdminIndex:             "/admin",
	AdminRoleIndex:         "/admin/roles",
	AdminRoleNew:           "/admin/roles/new",
	AdminRoleAddPermission: "/admin/roles/permissions",
	AdminRoleShow:          "/admin/roles/{id}",
}

// Path returns the pattern of a route name. It panics on unknown names,
// which only happens on a programming error at route registration.
func Path(name string) string {
	p, err := Table.Pattern(name)
	if err != nil {
		panic(err)
	}
	return p
}
