package middlewares

import (
	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/pkg/i18n"
)

// LanguageCookie holds the language picked via the locale switcher.
const LanguageCookie = "lang"

type i18nConfig struct {
	namespace string
	cookie    string
}

// I18nOption configures I18n.
type I18nOption func(*i18nConfig)

// WithI18nNamespace sets the translation namespace. Default "app".
func WithI18nNamespace(ns string) I18nOption {
	return func(cfg *i18nConfig) {
		if ns != "" {
			cfg.namespace = ns
		}
	}
}

// WithI18nCookie overrides the language cookie name.
func WithI18nCookie(name string) I18nOption {
	return func(cfg *i18nConfig) {
		if name != "" {
			cfg.cookie = name
		}
	}
}

// I18n resolves the request language from the language cookie, then
// Accept-Language, then the bundle default, and stores a Translator for
// c.T and the views.
func I18n(bundle *i18n.Bundle, opts ...I18nOption) internal.Middleware {
	cfg := &i18nConfig{namespace: "app", cookie: LanguageCookie}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lang := ""
			if v, err := c.Cookie(cfg.cookie); err == nil && bundle.Supports(v) {
				lang = v
			}
			if lang == "" {
				lang = bundle.Match(c.Header("Accept-Language"))
			}
			c.Set(internal.TranslatorKey{}, i18n.NewTranslator(bundle, lang, cfg.namespace))
			return next(c)
		}
	}
}
