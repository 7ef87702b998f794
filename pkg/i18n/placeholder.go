package i18n

import (
	"fmt"
	"strings"
)

// M is a shorthand for placeholder values.
type M map[string]any

// ReplacePlaceholders replaces {{name}} placeholders in template with values
// from the map in a single left-to-right pass, so substituted values are never
// scanned for further placeholders. Unknown placeholders are left unchanged.
//
// Example:
//
//	template: "Hello, {{name}}! You have {{count}} messages."
//	placeholders: M{"name": "John", "count": 5}
//	returns: "Hello, John! You have 5 messages."
func ReplacePlaceholders(template string, placeholders M) string {
	if len(placeholders) < 1 {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			break
		}
		end += start + 2

		name := strings.TrimSpace(rest[start+2 : end])
		b.WriteString(rest[:start])
		if value, ok := placeholders[name]; ok {
			fmt.Fprintf(&b, "%v", value)
		} else {
			b.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}
	b.WriteString(rest)

	return b.String()
}
