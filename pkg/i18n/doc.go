// Package i18n loads namespaced translations from YAML files and resolves
// keys with fallback to the base and the default language.
//
// Files follow {lang}/{namespace}.yaml. Nested maps are flattened to dotted
// keys and {{name}} placeholders are replaced from an M map:
//
//	bundle, err := i18n.New(
//		i18n.WithDefaultLanguage("de"),
//		i18n.WithYAMLDir(locales.FS),
//	)
//	bundle.T("en", "app", "flash.key_question_send_to_clearance")
//	bundle.Tn("de", "app", "exams.count", 3)
//
// Plural keys carry a ".zero", ".one" or ".other" suffix; a missing form falls
// back to ".other". Match negotiates an Accept-Language header against the
// loaded languages with golang.org/x/text/language.
package i18n
