package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips all HTML and escapes the remaining text.
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes every HTML element from s and returns entity-escaped text.
// Script and style contents are dropped together with their tags.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`|`, `\|`,
	`~`, `\~`,
)

// Markdown makes untrusted text safe to interpolate into a markdown
// document. HTML is stripped and inline markdown syntax is backslash-escaped,
// so the value renders as literal text and can be used as a link destination.
func Markdown(s string) string {
	return markdownEscaper.Replace(StripHTML(s))
}
