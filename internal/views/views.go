// Package views renders the HTML pages. Every page is a templ component
// backed by an embedded html/template set made of the shared layout, the
// partials and the page's own "content" block.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/pkg/i18n"
	"github.com/dmitrymomot/examdesk/pkg/sanitizer"
)

//go:embed templates
var files embed.FS

// Layout is the data every page gets.
type Layout struct {
	Now      time.Time
	Identity *internal.Identity
	Flash    *internal.Flash
	T        func(key string, args ...i18n.M) string
	Tn       func(key string, n int, args ...i18n.M) string
	URL      func(name string, params ...any) string
	Date     func(t time.Time) string
	CSRF     string
	Lang     string
	Title    string
	Langs    []string
	Subjects []repository.SubjectSummary
}

type view struct {
	Data any
	Layout
}

var pages = map[string]*template.Template{}

func init() {
	names, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	for _, name := range names {
		t := template.New(path.Base(name)).Funcs(Layout{}.funcs())
		t = template.Must(t.ParseFS(files, "templates/layout.html", "templates/partials/*.html", name))
		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
}

func (l Layout) funcs() template.FuncMap {
	return template.FuncMap{
		"t": func(key string, kv ...any) string {
			if l.T == nil {
				return key
			}
			return l.T(key, pairs(kv)...)
		},
		"tn": func(key string, n int) string {
			if l.Tn == nil {
				return key
			}
			return l.Tn(key, n)
		},
		"url": func(name string, params ...any) string {
			if l.URL == nil {
				return "#"
			}
			return l.URL(name, params...)
		},
		"date": func(t time.Time) string {
			if l.Date == nil {
				return t.Format("2006-01-02")
			}
			return l.Date(t)
		},
		"can":     l.Identity.HasPermission,
		"granted": l.Identity.HasRole,
		"locked": func(year int) bool {
			return l.Now.Year() < year+entity.ClaimWaitYears
		},
		"freeFrom": func(year int) int { return year + entity.ClaimWaitYears },
		"richtext": func(s string) template.HTML {
			return template.HTML(sanitizer.HTML(s))
		},
	}
}

func pairs(kv []any) []i18n.M {
	if len(kv) < 2 {
		return nil
	}
	m := make(i18n.M, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return []i18n.M{m}
}

func page(name string, l Layout, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		base, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		t, err := base.Clone()
		if err != nil {
			return fmt.Errorf("views: %s: %w", name, err)
		}
		if l.Now.IsZero() {
			l.Now = time.Now()
		}
		return t.Funcs(l.funcs()).ExecuteTemplate(w, "layout", view{Layout: l, Data: data})
	})
}
