package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/middlewares"
	"github.com/dmitrymomot/examdesk/pkg/i18n"
)

func TestI18n(t *testing.T) {
	t.Parallel()

	bundle, err := i18n.New(
		i18n.WithDefaultLanguage("de"),
		i18n.WithTranslations("de", "app", map[string]any{"exam": map[string]any{"none": "Keine Prüfungen gefunden."}}),
		i18n.WithTranslations("en", "app", map[string]any{"exam": map[string]any{"none": "No exams found."}}),
	)
	require.NoError(t, err)

	app := newApp(func(c internal.Context) error {
		return c.String(http.StatusOK, c.Language()+"|"+c.T("exam.none"))
	}, middlewares.I18n(bundle))

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"default language", "", "", "de|Keine Prüfungen gefunden."},
		{"accept-language", "", "en-US,en;q=0.9", "en|No exams found."},
		{"cookie wins", "de", "en", "de|Keine Prüfungen gefunden."},
		{"unsupported cookie ignored", "fr", "en", "en|No exams found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middlewares.LanguageCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			require.Equal(t, tt.want, do(app, req).Body.String())
		})
	}
}
