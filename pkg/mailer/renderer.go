package mailer

import (
	"bytes"
	"html/template"
	"io/fs"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// LayoutName is the HTML wrapper looked up next to the templates.
const LayoutName = "layout.html"

// Rendered is the output of Renderer.Render.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type parsed struct {
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// Renderer parses templates from fsys once and caches them.
type Renderer struct {
	fsys      fs.FS
	md        goldmark.Markdown
	templates map[string]*parsed
	layout    *template.Template
	mu        sync.RWMutex
}

func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{
		fsys:      fsys,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		templates: make(map[string]*parsed),
	}
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data any) (*Rendered, error) {
	t, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var subject, text, body, out bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return nil, wrap(ErrRender, name, err)
	}
	if err := t.body.Execute(&text, data); err != nil {
		return nil, wrap(ErrRender, name, err)
	}
	if err := r.md.Convert(text.Bytes(), &body); err != nil {
		return nil, wrap(ErrRender, name, err)
	}

	layout, err := r.loadLayout()
	if err != nil {
		return nil, err
	}
	if err := layout.Execute(&out, map[string]any{
		"Subject": subject.String(),
		"Content": template.HTML(body.String()), //nolint:gosec // produced by goldmark from our own templates
	}); err != nil {
		return nil, wrap(ErrRender, LayoutName, err)
	}

	return &Rendered{Subject: subject.String(), HTML: out.String(), Text: text.String()}, nil
}

func (r *Renderer) template(name string) (*parsed, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, wrap(ErrTemplateNotFound, name, err)
	}
	fm, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}

	t = &parsed{}
	if t.subject, err = texttemplate.New(name + ".subject").Parse(fm.Subject); err != nil {
		return nil, wrap(ErrRender, name, err)
	}
	if t.body, err = texttemplate.New(name).Parse(string(body)); err != nil {
		return nil, wrap(ErrRender, name, err)
	}

	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()
	return t, nil
}

func (r *Renderer) loadLayout() (*template.Template, error) {
	r.mu.RLock()
	l := r.layout
	r.mu.RUnlock()
	if l != nil {
		return l, nil
	}

	l, err := template.ParseFS(r.fsys, LayoutName)
	if err != nil {
		return nil, wrap(ErrTemplateNotFound, LayoutName, err)
	}

	r.mu.Lock()
	r.layout = l
	r.mu.Unlock()
	return l, nil
}
