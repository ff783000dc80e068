package i18n

import "time"

// Translator binds a Bundle to one language and namespace for a request.
type Translator struct {
	bundle    *Bundle
	lang      string
	namespace string
}

func NewTranslator(b *Bundle, lang, namespace string) *Translator {
	return &Translator{bundle: b, lang: lang, namespace: namespace}
}

func (t *Translator) T(key string, args ...M) string {
	return t.bundle.T(t.lang, t.namespace, key, args...)
}

func (t *Translator) Tn(key string, n int, args ...M) string {
	return t.bundle.Tn(t.lang, t.namespace, key, n, args...)
}

func (t *Translator) Language() string { return t.lang }

// FormatDate renders a date in the translator's locale.
func (t *Translator) FormatDate(d time.Time) string {
	if t.lang == "de" {
		return d.Format("02.01.2006")
	}
	return d.Format("2006-01-02")
}

// FormatDateTime renders a timestamp in the translator's locale.
func (t *Translator) FormatDateTime(d time.Time) string {
	if t.lang == "de" {
		return d.Format("02.01.2006 15:04")
	}
	return d.Format("2006-01-02 15:04")
}
