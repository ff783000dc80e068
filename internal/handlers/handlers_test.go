package handlers_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/auth"
	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/handlers"
	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/internal/roles"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/locales"
	"github.com/dmitrymomot/examdesk/middlewares"
	"github.com/dmitrymomot/examdesk/pkg/session"
)

var identities = map[string]examdesk.Identity{
	"admin": {
		UserID:      1,
		Username:    "admin",
		Role:        routes.RoleAdmin,
		Permissions: []string{routes.PermissionCreateKeyQuestion, routes.PermissionShowProfile},
	},
	"teacher": {
		UserID:      7,
		Username:    "mueller",
		Role:        "teacher",
		Permissions: []string{routes.PermissionCreateKeyQuestion, routes.PermissionShowProfile},
	},
	"guest": {UserID: 9, Username: "gast", Role: "guest"},
}

type routesFunc func(r examdesk.Router)

func (f routesFunc) Routes(r examdesk.Router) { f(r) }

type env struct {
	archive *archive
	roles   *roleStore
	server  *httptest.Server
	client  *http.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()

	bundle, err := locales.Bundle()
	require.NoError(t, err)

	hash, err := auth.HashPassword("geheim")
	require.NoError(t, err)
	users := userStore{users: map[string]*entity.User{
		"admin": {ID: 1, Username: "admin", PasswordHash: hash, UserRoleID: 1},
	}}

	e := &env{archive: newArchive(), roles: newRoleStore()}
	clock := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	catalogSvc := catalog.NewService(e.archive, nil, 0)
	pages := handlers.NewPages(catalogSvc, bundle.Languages(), handlers.WithClock(clock))

	app := examdesk.New(
		examdesk.WithRoutes(routes.Table),
		examdesk.WithSession(session.NewMemoryStore()),
		examdesk.WithMiddleware(middlewares.I18n(bundle)),
		examdesk.WithErrorHandler(pages.ErrorHandler()),
		examdesk.WithNotFoundHandler(pages.NotFound),
		examdesk.WithHandlers(
			handlers.NewHome(pages, bundle),
			handlers.NewAuth(pages, auth.NewService(users)),
			handlers.NewCatalog(pages, catalogSvc),
			handlers.NewProfile(pages, catalogSvc),
			handlers.NewKeyQuestion(pages, catalogSvc,
				keyquestion.NewService(workflow{e.archive}, keyquestion.WithClock(clock))),
			handlers.NewRoles(pages, roles.NewService(e.roles)),
			routesFunc(func(r examdesk.Router) {
				r.GET("/test/login/{name}", func(c examdesk.Context) error {
					if err := c.Login(identities[c.Param("name")]); err != nil {
						return err
					}
					return c.NoContent(http.StatusNoContent)
				})
			}),
		),
	)

	e.server = httptest.NewServer(app)
	t.Cleanup(e.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	e.client = &http.Client{Jar: jar}
	return e
}

func (e *env) login(t *testing.T, name string) {
	t.Helper()
	res, err := e.client.Get(e.server.URL + "/test/login/" + name)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
}

// get follows redirects and returns the final path and body.
func (e *env) get(t *testing.T, path string) (string, string) {
	t.Helper()
	res, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return read(t, res)
}

func (e *env) post(t *testing.T, path string, form url.Values) (string, string) {
	t.Helper()
	res, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	return read(t, res)
}

// postRaw posts without following redirects and returns status and body.
func (e *env) postRaw(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	client := *e.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	res, err := client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

// location issues a request without following the redirect.
func (e *env) location(t *testing.T, path string) (int, string) {
	t.Helper()
	client := *e.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	res, err := client.Get(e.server.URL + path)
	require.NoError(t, err)
	res.Body.Close()
	return res.StatusCode, res.Header.Get("Location")
}

func read(t *testing.T, res *http.Response) (string, string) {
	t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Less(t, res.StatusCode, 500, string(b))
	return res.Request.URL.Path, string(b)
}

func TestExamList(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	t.Run("counts and empty lists", func(t *testing.T) {
		_, body := e.get(t, "/exams/subject/2")
		assert.Equal(t, 2, strings.Count(body, "Keine Prüfungen gefunden."))
		assert.Contains(t, body, `<span class="count">3</span>`)
		assert.Contains(t, body, `<span class="count">0</span>`)
	})

	t.Run("main subject lists its exams", func(t *testing.T) {
		_, body := e.get(t, "/exams/subject/1")
		assert.Contains(t, body, "Analysis")
		assert.Contains(t, body, "Stochastik")
		assert.Contains(t, body, "Geometrie")
	})

	t.Run("unknown subject", func(t *testing.T) {
		path, body := e.get(t, "/exams/subject/42")
		assert.Equal(t, "/", path)
		assert.Contains(t, body, "Das Fach wurde nicht gefunden.")
	})
}

func TestGuards(t *testing.T) {
	t.Parallel()

	protected := []string{"/admin/roles", "/admin/roles/1", "/profile", "/profile/key-questions"}

	t.Run("anonymous", func(t *testing.T) {
		e := newEnv(t)
		for _, p := range protected {
			code, loc := e.location(t, p)
			assert.Equal(t, http.StatusFound, code, p)
			assert.Equal(t, "/", loc, p)
		}
	})

	t.Run("teacher is no admin", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		code, loc := e.location(t, "/admin/roles")
		assert.Equal(t, http.StatusFound, code)
		assert.Equal(t, "/", loc)

		code, _ = e.location(t, "/profile")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("admin", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		code, loc := e.location(t, "/admin")
		assert.Equal(t, http.StatusFound, code)
		assert.Equal(t, "/admin/roles", loc)
	})
}

func TestRoles(t *testing.T) {
	t.Parallel()

	t.Run("taken label", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		path, body := e.post(t, "/admin/roles/new", url.Values{"label": {"teacher"}})
		assert.Equal(t, "/admin/roles", path)
		assert.Contains(t, body, "Diese Bezeichnung ist bereits vergeben.")
		assert.Zero(t, e.roles.creates)
	})

	t.Run("create", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		_, body := e.post(t, "/admin/roles/new", url.Values{"label": {"supervisor"}, "description": {"Betreuung"}})
		assert.Contains(t, body, "Die Rolle wurde angelegt.")
		assert.Contains(t, body, "supervisor")
		assert.Equal(t, 1, e.roles.creates)
	})

	t.Run("show without mark_row changes nothing", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		before := len(e.roles.grants)
		path, body := e.post(t, "/admin/roles/1", url.Values{})
		assert.Equal(t, "/admin/roles/1", path)
		assert.Len(t, e.roles.grants, before)
		assert.NotContains(t, body, "Berechtigungen wurden entfernt.")
	})

	t.Run("revoke", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		_, body := e.post(t, "/admin/roles/1", url.Values{"mark_row[]": {"2"}})
		assert.Contains(t, body, "Berechtigungen wurden entfernt.")
		assert.Equal(t, []grant{{1, 1}, {2, 2}}, e.roles.grants)
	})

	t.Run("grant", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		path, body := e.post(t, "/admin/roles/permissions", url.Values{
			"role_id":       {"2"},
			"permissions[]": {"1", "1"},
		})
		assert.Equal(t, "/admin/roles/2", path)
		assert.Contains(t, body, "Berechtigungen wurden hinzugefügt.")
		assert.Contains(t, e.roles.grants, grant{2, 1})
		assert.Len(t, e.roles.grants, 4)
	})

	t.Run("missing role", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		path, body := e.get(t, "/admin/roles/99")
		assert.Equal(t, "/admin/roles", path)
		assert.Contains(t, body, "Die Rolle wurde nicht gefunden.")
	})

	t.Run("delete", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "admin")
		_, body := e.post(t, "/admin/roles", url.Values{"mark_row[]": {"2"}})
		assert.Contains(t, body, "Rollen wurden entfernt.")
		require.Len(t, e.roles.roles, 1)
		assert.Equal(t, "admin", e.roles.roles[0].Label)
	})
}

func TestKeyQuestion(t *testing.T) {
	t.Parallel()

	t.Run("claim locked exam", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		path, body := e.get(t, "/profile/key-questions/3/claim")
		assert.Equal(t, "/exams/3", path)
		assert.Contains(t, body, "Dieses Thema ist gesperrt.")
	})

	t.Run("claim missing exam", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		path, body := e.get(t, "/profile/key-questions/99/claim")
		assert.Equal(t, "/", path)
		assert.Contains(t, body, "Die Prüfung wurde nicht gefunden.")
	})

	t.Run("claim form", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		path, body := e.get(t, "/profile/key-questions/1/claim")
		assert.Equal(t, "/profile/key-questions/1/claim", path)
		assert.Contains(t, body, `name="transfer"`)
		assert.Contains(t, body, `name="exam_id"`)
	})

	form := func(examID string) url.Values {
		return url.Values{
			"exam_id":          {examID},
			"username":         {"mueller"},
			"topic":            {"Analysis"},
			"school_subject_1": {"Mathematik"},
			"school_subject_2": {"Physik"},
			"key_question":     {"Wie verändert sich die Steigung?"},
		}
	}

	t.Run("transfer", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		path, body := e.post(t, "/profile/key-questions/transfer", form("1"))
		assert.Equal(t, "/profile", path)
		assert.Contains(t, body, "Der Antrag wurde zur Freigabe gesendet.")
		assert.Equal(t, []string{keyquestion.TaskNotifyClearance}, e.archive.jobs)
		require.NotNil(t, e.archive.exams[1].UserID)
		assert.Equal(t, int64(7), *e.archive.exams[1].UserID)
	})

	t.Run("transfer on claimed exam", func(t *testing.T) {
		e := newEnv(t)
		owner := int64(3)
		e.archive.exams[1].UserID = &owner
		e.login(t, "teacher")
		path, body := e.post(t, "/profile/key-questions/transfer", form("1"))
		assert.Equal(t, "/profile", path)
		assert.Contains(t, body, "Dieses Thema wurde bereits beantragt.")
		assert.NotContains(t, body, "Der Antrag wurde zur Freigabe gesendet.")
		assert.Empty(t, e.archive.written)
		assert.Empty(t, e.archive.jobs)
	})

	t.Run("transfer on locked exam", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		path, body := e.post(t, "/profile/key-questions/transfer", form("3"))
		assert.Equal(t, "/profile", path)
		assert.Contains(t, body, "Dieses Thema ist gesperrt.")
		assert.Nil(t, e.archive.exams[3].UserID)
		assert.Empty(t, e.archive.written)
	})

	t.Run("transfer rolled back", func(t *testing.T) {
		e := newEnv(t)
		e.archive.enqueueErr = errors.New("queue unavailable")
		e.login(t, "teacher")
		code, body := e.postRaw(t, "/profile/key-questions/transfer", form("1"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.NotContains(t, body, "Der Antrag wurde zur Freigabe gesendet.")
		assert.Nil(t, e.archive.exams[1].UserID)
		assert.Empty(t, e.archive.written)
		assert.Empty(t, e.archive.jobs)

		_, body = e.get(t, "/profile")
		assert.NotContains(t, body, "Der Antrag wurde zur Freigabe gesendet.")
	})

	t.Run("unknown user", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		f := form("1")
		f.Set("username", "niemand")
		_, body := e.post(t, "/profile/key-questions/transfer", f)
		assert.Contains(t, body, "Der Benutzer wurde nicht gefunden.")
		assert.Empty(t, e.archive.jobs)
	})

	t.Run("empty form", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "teacher")
		_, body := e.post(t, "/profile/key-questions/transfer", url.Values{"exam_id": {"1"}})
		assert.Contains(t, body, "Bitte alle Felder des Antrags ausfüllen.")
	})
}

func TestAuth(t *testing.T) {
	t.Parallel()

	t.Run("login and logout", func(t *testing.T) {
		e := newEnv(t)
		path, body := e.post(t, "/login", url.Values{"username": {"admin"}, "password": {"geheim"}})
		assert.Equal(t, "/", path)
		assert.Contains(t, body, "Willkommen zurück.")

		code, _ := e.location(t, "/admin/roles")
		assert.Equal(t, http.StatusOK, code)

		_, body = e.post(t, "/logout", url.Values{})
		assert.Contains(t, body, "Du wurdest abgemeldet.")
		code, loc := e.location(t, "/admin/roles")
		assert.Equal(t, http.StatusFound, code)
		assert.Equal(t, "/", loc)
	})

	t.Run("wrong password", func(t *testing.T) {
		e := newEnv(t)
		path, body := e.post(t, "/login", url.Values{"username": {"admin"}, "password": {"falsch"}})
		assert.Equal(t, "/login", path)
		assert.Contains(t, body, "Benutzername oder Passwort ist falsch.")
	})

	t.Run("empty form", func(t *testing.T) {
		e := newEnv(t)
		_, body := e.post(t, "/login", url.Values{})
		assert.Contains(t, body, "Bitte Benutzername und Passwort angeben.")
	})
}

func TestLocale(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	path, body := e.get(t, "/locale/en")
	assert.Equal(t, "/", path)
	assert.NotContains(t, body, "Anmelden")

	_, body = e.get(t, "/exams/subject/2")
	assert.NotContains(t, body, "Keine Prüfungen gefunden.")
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	res, err := e.client.Get(e.server.URL + "/nope")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
