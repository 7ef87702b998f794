package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ParseLocale resolves a caller supplied language code to one of the
// available languages. An empty code resolves to the default language.
// Regional variants resolve to their base language ("es-AR" becomes "es").
// Codes that are not valid BCP 47 tags, or whose language is not available,
// return ErrBadLanguageCode; a related language is never substituted
// ("gl" does not become "es").
func (i *I18n) ParseLocale(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return i.defaultLang, nil
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadLanguageCode, code)
	}

	_, idx, confidence := i.matcher.Match(tag)
	if confidence == language.No || idx < 0 || idx >= len(i.languages) || !sameBase(tag, i.languages[idx]) {
		return "", fmt.Errorf("%w: %q is not available", ErrBadLanguageCode, code)
	}

	return i.languages[idx], nil
}

func sameBase(tag language.Tag, lang string) bool {
	want, _ := tag.Base()
	got, _ := language.Make(lang).Base()
	return want == got
}
