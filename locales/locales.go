// Package locales embeds the translation files, one directory per language.
package locales

import (
	"embed"

	"github.com/dmitrymomot/examdesk/pkg/i18n"
)

//go:embed de/*.yaml en/*.yaml
var FS embed.FS

// Default is the fallback language.
const Default = "de"

// Bundle loads every embedded translation.
func Bundle(opts ...i18n.Option) (*i18n.Bundle, error) {
	return i18n.New(append([]i18n.Option{
		i18n.WithDefaultLanguage(Default),
		i18n.WithYAMLDir(FS),
	}, opts...)...)
}
