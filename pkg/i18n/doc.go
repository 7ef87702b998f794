// Package i18n provides the string tables and locale resolution used to
// render localized emails.
//
// Translations are loaded once at construction time and the resulting I18n
// value is immutable and safe for concurrent use. Lookups are O(1) through
// key flattening ("lang:namespace:key.path").
//
// # Basic Usage
//
//	tr, err := i18n.New(
//		i18n.WithDefaultLanguage("en"),
//		i18n.WithTranslations("en", "emails", map[string]any{
//			"greeting_line": "Hello {{name}},",
//		}),
//		i18n.WithTranslations("es", "emails", map[string]any{
//			"greeting_line": "Hola {{name}},",
//		}),
//	)
//
//	tr.T("es", "emails", "greeting_line", i18n.M{"name": "Ana"})
//	// Output: "Hola Ana,"
//
// # File-Based Translations
//
// Load translations from YAML or JSON files in an fs.FS laid out as
// {lang}/{namespace}.yaml:
//
//	sub, _ := fs.Sub(emails.FS, "locales")
//	tr, err := i18n.New(i18n.WithYAMLDir(sub))
//
// # Locale Resolution
//
// ParseLocale maps a caller supplied code onto an available language using
// BCP 47 matching from golang.org/x/text/language:
//
//	tr.ParseLocale("")      // "en", nil
//	tr.ParseLocale("es-MX") // "es", nil
//	tr.ParseLocale("xx!")   // "", ErrBadLanguageCode
//
// # Language Fallback
//
// When a key is missing in the requested language, lookup falls back to the
// base language, then the default language, then the key itself.
package i18n
