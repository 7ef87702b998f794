package i18n

import "fmt"

// Translator wraps an I18n instance with a fixed language and namespace.
type Translator struct {
	i18n      *I18n
	language  string
	namespace string
}

// NewTranslator creates a new Translator with the specified language and namespace.
// If language is empty, it defaults to the I18n instance's default language.
func NewTranslator(i18n *I18n, language, namespace string) *Translator {
	if i18n == nil {
		panic("i18n: service is not provided")
	}
	if language == "" {
		language = i18n.DefaultLanguage()
	}
	return &Translator{
		i18n:      i18n,
		language:  language,
		namespace: namespace,
	}
}

// T translates a key using the translator's language and namespace context.
func (t *Translator) T(key string, placeholders ...M) string {
	return t.i18n.T(t.language, t.namespace, key, placeholders...)
}

// Pairs translates a key with placeholders given as alternating name/value
// arguments. It is registered as the "t" function in email templates:
//
//	{{ t "greeting_line" "name" .to_name }}
func (t *Translator) Pairs(key string, args ...any) string {
	if len(args) == 0 {
		return t.T(key)
	}
	m := make(M, len(args)/2)
	for n := 0; n+1 < len(args); n += 2 {
		m[fmt.Sprint(args[n])] = args[n+1]
	}
	return t.T(key, m)
}

// Language returns the translator's language.
func (t *Translator) Language() string {
	return t.language
}

// Namespace returns the translator's namespace.
func (t *Translator) Namespace() string {
	return t.namespace
}
