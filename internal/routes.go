package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrUnknownRoute      = errors.New("routes: unknown route")
	ErrMissingRouteParam = errors.New("routes: missing route parameter")
)

// RouteTable maps symbolic route names to chi patterns such as "/exams/{id}".
type RouteTable map[string]string

// Pattern returns the pattern registered under name.
func (t RouteTable) Pattern(name string) (string, error) {
	p, ok := t[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	return p, nil
}

// URL fills the pattern's {param} placeholders with params, left to right.
// Surplus params are ignored; values are path-escaped.
func (t RouteTable) URL(name string, params ...any) (string, error) {
	pattern, err := t.Pattern(name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rest := pattern
	i := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])

		if i >= len(params) {
			return "", fmt.Errorf("%w: %s needs %s", ErrMissingRouteParam, name, rest[open:open+end+1])
		}
		b.WriteString(url.PathEscape(fmt.Sprint(params[i])))
		i++
		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

// MustURL is URL for templates and redirects with statically known names.
// An unknown name yields "#".
func (t RouteTable) MustURL(name string, params ...any) string {
	u, err := t.URL(name, params...)
	if err != nil {
		return "#"
	}
	return u
}
