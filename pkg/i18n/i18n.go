package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyLanguage = errors.New("i18n: language must not be empty")
	ErrInvalidFile   = errors.New("i18n: invalid translation file")
)

// M holds placeholder values.
type M map[string]any

// Bundle is immutable after New and safe for concurrent use.
type Bundle struct {
	messages    map[string]string
	missing     func(lang, namespace, key string)
	matcher     language.Matcher
	defaultLang string
	languages   []string
}

// Option configures a Bundle during New.
type Option func(*Bundle) error

// New builds a Bundle. The default language is "en" unless overridden.
func New(opts ...Option) (*Bundle, error) {
	b := &Bundle{messages: make(map[string]string), defaultLang: "en"}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("i18n: apply option: %w", err)
		}
	}

	// Default language first so the matcher falls back to it.
	langs := []string{b.defaultLang}
	for k := range b.messages {
		lang, _, _ := strings.Cut(k, ":")
		if !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs[1:])
	b.languages = langs

	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, language.Make(l))
	}
	b.matcher = language.NewMatcher(tags)

	return b, nil
}

func WithDefaultLanguage(lang string) Option {
	return func(b *Bundle) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		b.defaultLang = lang
		return nil
	}
}

// WithTranslations adds an in-memory namespace, mostly for tests.
func WithTranslations(lang, namespace string, data map[string]any) Option {
	return func(b *Bundle) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		b.add(lang, namespace, data)
		return nil
	}
}

// WithYAMLDir loads every {lang}/{namespace}.yaml (or .yml) in fsys.
func WithYAMLDir(fsys fs.FS) Option {
	return func(b *Bundle) error {
		return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			ext := strings.ToLower(path.Ext(p))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}
			dir := path.Dir(p)
			if dir == "." {
				return fmt.Errorf("%w: %q is not inside a language directory", ErrInvalidFile, p)
			}

			raw, err := fs.ReadFile(fsys, p)
			if err != nil {
				return err
			}
			var data map[string]any
			if err := yaml.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("%w: %q: %w", ErrInvalidFile, p, err)
			}
			b.add(path.Base(dir), strings.TrimSuffix(path.Base(p), path.Ext(p)), data)
			return nil
		})
	}
}

// WithMissingKeyHandler is called for every key that resolves nowhere.
func WithMissingKeyHandler(fn func(lang, namespace, key string)) Option {
	return func(b *Bundle) error {
		b.missing = fn
		return nil
	}
}

func (b *Bundle) add(lang, namespace string, data map[string]any) {
	flatten(data, "", func(key, value string) {
		b.messages[lang+":"+namespace+":"+key] = value
	})
}

func flatten(data map[string]any, prefix string, put func(key, value string)) {
	for k, v := range data {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(v, key, put)
		case string:
			put(key, v)
		default:
			put(key, fmt.Sprint(v))
		}
	}
}

// DefaultLanguage returns the fallback language.
func (b *Bundle) DefaultLanguage() string { return b.defaultLang }

// Languages lists loaded languages, default first.
func (b *Bundle) Languages() []string { return slices.Clone(b.languages) }

// Supports reports whether lang has translations or is the default.
func (b *Bundle) Supports(lang string) bool { return slices.Contains(b.languages, lang) }

// T translates key. Unknown keys are returned unchanged.
func (b *Bundle) T(lang, namespace, key string, args ...M) string {
	msg, ok := b.lookup(lang, namespace, key)
	if !ok {
		if b.missing != nil {
			b.missing(lang, namespace, key)
		}
		return key
	}
	return replace(msg, args...)
}

// Tn translates the plural form of key for n and exposes n as {{count}}.
func (b *Bundle) Tn(lang, namespace, key string, n int, args ...M) string {
	forms := []string{"other"}
	switch n {
	case 0:
		forms = []string{"zero", "other"}
	case 1:
		forms = []string{"one", "other"}
	}

	for _, form := range forms {
		if msg, ok := b.lookup(lang, namespace, key+"."+form); ok {
			return replace(msg, append([]M{{"count": n}}, args...)...)
		}
	}
	if b.missing != nil {
		b.missing(lang, namespace, key)
	}
	return key
}

// Match picks the best loaded language for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.defaultLang
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.defaultLang
	}
	return b.languages[idx]
}

func (b *Bundle) lookup(lang, namespace, key string) (string, bool) {
	candidates := []string{lang}
	if base, _, ok := strings.Cut(lang, "-"); ok {
		candidates = append(candidates, base)
	}
	candidates = append(candidates, b.defaultLang)

	for _, l := range candidates {
		if msg, ok := b.messages[l+":"+namespace+":"+key]; ok {
			return msg, true
		}
	}
	return "", false
}

func replace(msg string, args ...M) string {
	if len(args) == 0 {
		return msg
	}
	merged := make(M)
	for _, a := range args {
		maps.Copy(merged, a)
	}
	for k, v := range merged {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", fmt.Sprint(v))
	}
	return msg
}
