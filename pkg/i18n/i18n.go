package i18n

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang is the default language code used when no default language is specified.
const DefaultLang = "en"

// I18n holds the string tables used to localize email templates.
// It is immutable after creation, making it safe for concurrent use.
type I18n struct {
	// Flattened translations map for O(1) lookups.
	// Key format: "lang:namespace:key.path"
	translations map[string]string

	// Optional handler called when a translation key is not found.
	missingKeyHandler func(lang, namespace, key string)

	// Matcher over the available languages, used by ParseLocale.
	matcher language.Matcher

	defaultLang string
	languages   []string
}

// Option configures the I18n instance during construction.
type Option func(*I18n) error

// New creates a new I18n instance with the given options.
// When WithLanguages is not used, the available languages are the ones
// that have at least one translation loaded, plus the default language.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		translations: make(map[string]string),
		defaultLang:  DefaultLang,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if i.defaultLang == "" {
		return nil, ErrEmptyLanguage
	}

	i.languages = i.buildLanguagesList()

	tags := make([]language.Tag, 0, len(i.languages))
	for _, lang := range i.languages {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadLanguageCode, lang)
		}
		tags = append(tags, tag)
	}
	i.matcher = language.NewMatcher(tags)

	return i, nil
}

// WithDefaultLanguage sets the default/fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		i.defaultLang = lang
		return nil
	}
}

// WithLanguages restricts the available languages.
// The default language is always included and placed first, others are sorted.
func WithLanguages(langs ...string) Option {
	return func(i *I18n) error {
		if len(langs) == 0 {
			return nil
		}
		set := make(map[string]struct{}, len(langs))
		for _, lang := range langs {
			if lang != "" {
				set[lang] = struct{}{}
			}
		}
		i.languages = slices.Collect(maps.Keys(set))
		return nil
	}
}

// WithTranslations loads translations for a specific language and namespace.
// Nested maps are flattened into dot-separated keys.
func WithTranslations(lang, namespace string, translations map[string]any) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if namespace == "" {
			return ErrEmptyNamespace
		}
		i.store(lang, namespace, translations)
		return nil
	}
}

// WithMissingKeyHandler sets a handler called when a key is not found in any
// language, including the default one.
func WithMissingKeyHandler(handler func(lang, namespace, key string)) Option {
	return func(i *I18n) error {
		i.missingKeyHandler = handler
		return nil
	}
}

// T retrieves a translation for the given language, namespace and key.
// Lookup order is exact language, base language, default language.
// Returns the key itself if no translation exists.
func (i *I18n) T(lang, namespace, key string, placeholders ...M) string {
	if translation, ok := i.lookup(lang, namespace, key); ok {
		return replacePlaceholdersWithMerge(translation, placeholders...)
	}

	if i.missingKeyHandler != nil {
		i.missingKeyHandler(lang, namespace, key)
	}

	return key
}

// Has reports whether key resolves in lang, including fallbacks.
func (i *I18n) Has(lang, namespace, key string) bool {
	_, ok := i.lookup(lang, namespace, key)
	return ok
}

func (i *I18n) lookup(lang, namespace, key string) (string, bool) {
	if translation, exists := i.translations[buildKey(lang, namespace, key)]; exists {
		return translation, true
	}

	base := baseLanguage(lang)
	if base != lang {
		if translation, exists := i.translations[buildKey(base, namespace, key)]; exists {
			return translation, true
		}
	}

	if lang != i.defaultLang && base != i.defaultLang {
		if translation, exists := i.translations[buildKey(i.defaultLang, namespace, key)]; exists {
			return translation, true
		}
	}

	return "", false
}

// Languages returns the list of available languages, default first.
func (i *I18n) Languages() []string {
	return slices.Clone(i.languages)
}

// DefaultLanguage returns the default/fallback language.
func (i *I18n) DefaultLanguage() string {
	return i.defaultLang
}

func (i *I18n) store(lang, namespace string, translations map[string]any) {
	for key, value := range flattenTranslations(translations, "") {
		i.translations[buildKey(lang, namespace, key)] = value
	}
}

func (i *I18n) buildLanguagesList() []string {
	set := make(map[string]struct{})
	if len(i.languages) > 0 {
		for _, lang := range i.languages {
			set[lang] = struct{}{}
		}
	} else {
		for key := range i.translations {
			if lang, _, ok := strings.Cut(key, ":"); ok {
				set[lang] = struct{}{}
			}
		}
	}
	delete(set, i.defaultLang)

	others := slices.Sorted(maps.Keys(set))
	return append([]string{i.defaultLang}, others...)
}

func buildKey(lang, namespace, key string) string {
	return lang + ":" + namespace + ":" + key
}

func flattenTranslations(data map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = v
		case map[string]any:
			maps.Copy(result, flattenTranslations(v, fullKey))
		case map[string]string:
			for subKey, subVal := range v {
				result[fullKey+"."+subKey] = subVal
			}
		default:
			result[fullKey] = fmt.Sprintf("%v", v)
		}
	}

	return result
}

func replacePlaceholdersWithMerge(template string, placeholders ...M) string {
	if len(placeholders) == 0 {
		return template
	}

	merged := make(M)
	for _, p := range placeholders {
		maps.Copy(merged, p)
	}

	return ReplacePlaceholders(template, merged)
}

// baseLanguage strips the region from a language tag ("en-US" becomes "en").
func baseLanguage(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		return lang[:i]
	}
	return lang
}
