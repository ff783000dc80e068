// Package handlers holds the HTTP handlers, one per area. Each handler
// declares its routes and translates service results into redirects,
// flashes and rendered pages.
package handlers

import (
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/views"
)

// Pages builds the layout shared by every rendered page.
type Pages struct {
	catalog *catalog.Service
	now     func() time.Time
	langs   []string
}

type PagesOption func(*Pages)

// WithClock replaces time.Now, e.g. for the lock badges in tests.
func WithClock(now func() time.Time) PagesOption {
	return func(p *Pages) { p.now = now }
}

func NewPages(catalog *catalog.Service, langs []string, opts ...PagesOption) *Pages {
	p := &Pages{catalog: catalog, langs: langs, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now is the clock used for claim eligibility.
func (p *Pages) Now() time.Time { return p.now() }

// Layout collects the page data of the current request. It pops the
// pending flash message.
func (p *Pages) Layout(c examdesk.Context, title string) (views.Layout, error) {
	subjects, err := p.catalog.Subjects(c)
	if err != nil {
		return views.Layout{}, err
	}
	l := views.Layout{
		Now:      p.now(),
		Identity: c.Identity(),
		Flash:    c.Flash(),
		T:        c.T,
		Tn:       c.Tn,
		URL:      c.URL,
		CSRF:     c.CSRFToken(),
		Lang:     c.Language(),
		Title:    title,
		Langs:    p.langs,
		Subjects: subjects,
	}
	if tr := c.Translator(); tr != nil {
		l.Date = tr.FormatDate
	}
	return l, nil
}

// Render renders the page built by fn with status 200.
func (p *Pages) Render(c examdesk.Context, title string, fn func(views.Layout) templ.Component) error {
	l, err := p.Layout(c, title)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, fn(l))
}

// ErrorHandler renders the error page. When even the layout cannot be
// built the status text is written as plain text.
func (p *Pages) ErrorHandler() examdesk.ErrorHandler {
	return func(c examdesk.Context, err error) error {
		code := examdesk.StatusCode(err)

		data := views.ErrorData{Code: code, Key: errorKey(code, err)}
		l, lerr := p.Layout(c, c.T(data.Key))
		if lerr != nil {
			c.LogError("render error page", "error", lerr)
			return c.String(code, http.StatusText(code))
		}
		return c.Render(code, views.Error(l, data))
	}
}

// NotFound is the handler for unknown paths.
func (p *Pages) NotFound(c examdesk.Context) error {
	return examdesk.ErrNotFound("")
}

func errorKey(code int, err error) string {
	if he, ok := examdesk.AsHTTPError(err); ok && he.ErrorCode == "csrf_invalid" {
		return "error.csrf_invalid"
	}
	switch code {
	case http.StatusNotFound:
		return "error.not_found"
	case http.StatusForbidden:
		return "error.forbidden"
	default:
		return "error.internal"
	}
}
