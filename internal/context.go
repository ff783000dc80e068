package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/examdesk/pkg/htmx"
	"github.com/dmitrymomot/examdesk/pkg/i18n"
	"github.com/dmitrymomot/examdesk/pkg/session"
)

// Session value keys.
const (
	sessionIdentity     = "identity"
	sessionCSRF         = "csrf_token"
	sessionFlashMessage = "flash_message"
	sessionFlashType    = "flash_type"
)

// Flash kinds used by the toast.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
// Message is a translation key.
type Flash struct {
	Message string
	Type    string
}

// TranslatorKey stores the request's *i18n.Translator.
type TranslatorKey struct{}

// Context is the per-request API handed to handlers and middleware.
// It also implements context.Context through the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter
	Context() context.Context

	// Param returns a chi URL parameter.
	Param(name string) string
	Query(name string) string
	Header(name string) string
	SetHeader(name, value string)

	// Field returns a form value from the body or the query string.
	Field(name string) string
	// Fields returns every value of a repeated field; "name[]" is also tried.
	Fields(name string) []string
	IsPost() bool
	// IsFormSubmitted reports a POST that carries the named submit field.
	IsFormSubmitted(name string) bool

	Render(code int, component Component) error
	String(code int, s string) error
	JSON(code int, v any) error
	NoContent(code int) error
	// Redirect answers 302, or HX-Redirect for htmx requests.
	Redirect(url string) error
	// RedirectTo redirects to a named route.
	RedirectTo(route string, params ...any) error
	// URL builds a named route's path; unknown names yield "#".
	URL(route string, params ...any) string
	Routes() RouteTable
	Error(code int, message string) *HTTPError
	IsHTMX() bool
	Written() bool

	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)

	// SetRequest replaces the request, e.g. after deriving a new context.
	SetRequest(r *http.Request)

	// Session loads the current session or returns nil when there is none.
	Session() (*session.Session, error)
	// Identity returns the logged-in user or nil.
	Identity() *Identity
	IsAuthenticated() bool
	HasRole(role string) bool
	Can(permission string) bool
	// Login stores id in a fresh session token and rotates the CSRF token.
	Login(id Identity) error
	Logout() error

	// CSRFToken returns the session's CSRF token, creating a session if needed.
	CSRFToken() string
	SetFlash(message, kind string)
	// Flash pops the pending flash message.
	Flash() *Flash

	T(key string, args ...i18n.M) string
	Tn(key string, n int, args ...i18n.M) string
	Language() string
	Translator() *i18n.Translator

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	Set(key, value any)
	Get(key any) any
}

type ctxKey struct{}

// FromRequest returns the Context attached to r by the App, if any.
func FromRequest(r *http.Request) (Context, bool) {
	c, ok := r.Context().Value(ctxKey{}).(*requestContext)
	return c, ok
}

// FromContext returns the Context carried by ctx, e.g. inside a component.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*requestContext)
	return c, ok
}

type requestContext struct {
	request  *http.Request
	writer   *ResponseWriter
	app      *App
	session  *session.Session
	identity *Identity
	values   map[any]any

	sessionLoaded  bool
	identityLoaded bool
	hookSet        bool
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	c := &requestContext{writer: NewResponseWriter(w), app: app}
	c.request = r.WithContext(context.WithValue(r.Context(), ctxKey{}, c))
	return c
}

func (c *requestContext) Deadline() (deadline time.Time, ok bool) {
	return c.request.Context().Deadline()
}
func (c *requestContext) Done() <-chan struct{} { return c.request.Context().Done() }
func (c *requestContext) Err() error            { return c.request.Context().Err() }

func (c *requestContext) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.request.Context().Value(key)
}

func (c *requestContext) Request() *http.Request                { return c.request }
func (c *requestContext) Response() http.ResponseWriter         { return c.writer }
func (c *requestContext) ResponseWriter() *ResponseWriter       { return c.writer }
func (c *requestContext) Context() context.Context              { return c }
func (c *requestContext) SetRequest(r *http.Request)            { c.request = r }
func (c *requestContext) Param(name string) string              { return chi.URLParam(c.request, name) }
func (c *requestContext) Query(name string) string              { return c.request.URL.Query().Get(name) }
func (c *requestContext) Header(name string) string             { return c.request.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string)          { c.writer.Header().Set(name, value) }
func (c *requestContext) IsHTMX() bool                          { return htmx.IsHTMX(c.request) }
func (c *requestContext) Written() bool                         { return c.writer.Written() }
func (c *requestContext) Routes() RouteTable                    { return c.app.routes }
func (c *requestContext) IsPost() bool                          { return c.request.Method == http.MethodPost }
func (c *requestContext) Error(code int, msg string) *HTTPError { return NewHTTPError(code, msg) }

func (c *requestContext) Field(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Fields(name string) []string {
	_ = c.request.ParseForm()
	if v := c.request.Form[name]; len(v) > 0 {
		return v
	}
	return c.request.Form[name+"[]"]
}

func (c *requestContext) IsFormSubmitted(name string) bool {
	if !c.IsPost() {
		return false
	}
	_ = c.request.ParseForm()
	_, ok := c.request.PostForm[name]
	return ok
}

func (c *requestContext) Render(code int, component Component) error {
	c.writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.writer.WriteHeader(code)
	return component.Render(c, c.writer)
}

func (c *requestContext) String(code int, s string) error {
	c.writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.writer.WriteHeader(code)
	_, err := c.writer.Write([]byte(s))
	return err
}

func (c *requestContext) JSON(code int, v any) error {
	c.writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.writer.WriteHeader(code)
	return json.NewEncoder(c.writer).Encode(v)
}

func (c *requestContext) NoContent(code int) error {
	c.writer.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(url string) error {
	htmx.Redirect(c.writer, c.request, url)
	return nil
}

func (c *requestContext) RedirectTo(route string, params ...any) error {
	u, err := c.app.routes.URL(route, params...)
	if err != nil {
		return err
	}
	return c.Redirect(u)
}

func (c *requestContext) URL(route string, params ...any) string {
	return c.app.routes.MustURL(route, params...)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookies.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookies.Set(c.writer, name, value, maxAge)
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.app.sessions == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerFlush()
	if c.sessionLoaded {
		return c.session, nil
	}
	sess, err := c.app.sessions.Load(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.session, c.sessionLoaded = sess, true
	return sess, nil
}

// ensureSession loads the session or starts an anonymous one.
func (c *requestContext) ensureSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil || sess != nil {
		return sess, err
	}
	sess, err = c.app.sessions.Create(c.Context())
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.app.sessions.WriteCookie(c.writer, sess)
	return sess, nil
}

// registerFlush saves a dirty session right before the response header goes out.
func (c *requestContext) registerFlush() {
	if c.hookSet {
		return
	}
	c.hookSet = true
	c.writer.OnBeforeWrite(func() {
		if err := c.app.sessions.Save(c.Context(), c.session); err != nil {
			c.LogError("save session", slog.Any("error", err))
		}
	})
}

func (c *requestContext) Identity() *Identity {
	if c.identityLoaded {
		return c.identity
	}
	c.identityLoaded = true

	sess, err := c.Session()
	if err != nil || sess == nil {
		return nil
	}
	raw, ok := sess.Get(sessionIdentity)
	if !ok {
		return nil
	}
	id, err := decodeIdentity(raw)
	if err != nil {
		c.LogWarn("corrupted identity in session", slog.String("session_id", sess.ID), slog.Any("error", err))
		return nil
	}
	c.identity = id
	return id
}

func (c *requestContext) IsAuthenticated() bool      { return c.Identity() != nil }
func (c *requestContext) HasRole(role string) bool   { return c.Identity().HasRole(role) }
func (c *requestContext) Can(permission string) bool { return c.Identity().HasPermission(permission) }

func (c *requestContext) Login(id Identity) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	raw, err := encodeIdentity(id)
	if err != nil {
		return err
	}

	sess.UserID = strconv.FormatInt(id.UserID, 10)
	sess.Set(sessionIdentity, raw)
	token, err := newCSRFToken()
	if err != nil {
		return err
	}
	sess.Set(sessionCSRF, token)

	if err := c.app.sessions.Rotate(c.Context(), sess); err != nil {
		return err
	}
	c.app.sessions.WriteCookie(c.writer, sess)
	c.identity, c.identityLoaded = &id, true
	return nil
}

func (c *requestContext) Logout() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := c.app.sessions.Destroy(c.Context(), sess); err != nil {
		return err
	}
	c.app.sessions.ClearCookie(c.writer)
	c.session, c.identity = nil, nil
	c.identityLoaded = true
	return nil
}

func (c *requestContext) CSRFToken() string {
	sess, err := c.ensureSession()
	if err != nil || sess == nil {
		c.LogError("csrf token: no session", slog.Any("error", err))
		return ""
	}
	if tok, ok := sess.Get(sessionCSRF); ok && tok != "" {
		return tok
	}
	tok, err := newCSRFToken()
	if err != nil {
		c.LogError("csrf token", slog.Any("error", err))
		return ""
	}
	sess.Set(sessionCSRF, tok)
	return tok
}

// storedCSRFToken returns the token without creating a session.
func (c *requestContext) storedCSRFToken() string {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return ""
	}
	tok, _ := sess.Get(sessionCSRF)
	return tok
}

func (c *requestContext) SetFlash(message, kind string) {
	sess, err := c.ensureSession()
	if err != nil || sess == nil {
		c.LogError("set flash: no session", slog.Any("error", err))
		return
	}
	sess.Set(sessionFlashMessage, message)
	sess.Set(sessionFlashType, kind)
}

func (c *requestContext) Flash() *Flash {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return nil
	}
	msg, ok := sess.Pop(sessionFlashMessage)
	kind, _ := sess.Pop(sessionFlashType)
	if !ok || msg == "" {
		return nil
	}
	if kind == "" {
		kind = FlashInfo
	}
	return &Flash{Message: msg, Type: kind}
}

func (c *requestContext) Translator() *i18n.Translator {
	tr, _ := c.Get(TranslatorKey{}).(*i18n.Translator)
	return tr
}

func (c *requestContext) T(key string, args ...i18n.M) string {
	if tr := c.Translator(); tr != nil {
		return tr.T(key, args...)
	}
	return key
}

func (c *requestContext) Tn(key string, n int, args ...i18n.M) string {
	if tr := c.Translator(); tr != nil {
		return tr.Tn(key, n, args...)
	}
	return key
}

func (c *requestContext) Language() string {
	if tr := c.Translator(); tr != nil {
		return tr.Language()
	}
	return ""
}

func (c *requestContext) Logger() *slog.Logger { return c.app.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c, msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c, msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c, msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c, msg, attrs...)
}

// Set stores a request-scoped value visible to later middleware and handlers.
func (c *requestContext) Set(key, value any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

func (c *requestContext) Get(key any) any {
	return c.Value(key)
}

func newCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var _ Context = (*requestContext)(nil)
