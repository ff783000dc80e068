// Package examdesk is the web layer of the exam desk application: a small
// HTTP framework over chi with server-side sessions, named routes, guards,
// CSRF protection and flash messages.
//
// Handlers implement Handler and declare routes on a Router:
//
//	type Catalog struct{ svc *catalog.Service }
//
//	func (h *Catalog) Routes(r examdesk.Router) {
//	    r.GET("/exams/subject/{id}", h.list)
//	    r.GET("/profile", h.profile, examdesk.DenyAccessUnlessHasPermission("show_profile"))
//	}
//
// Every request gets one Context. Middleware and the handler share it, so a
// session loaded by a guard is the same one the handler sees, and all
// pending session changes are written once, right before the response
// header.
//
// Identity is stored in the session at login as a snapshot of the user's
// role label and permission labels. Guards compare against that snapshot.
package examdesk
