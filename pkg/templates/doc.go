// Package templates resolves template ids and renders localized email HTML.
//
// Templates are markdown files with optional YAML frontmatter, stored as
// templates/<id>.md in an fs.FS. Layouts are html/template files under
// layouts/. The frontmatter may declare a subject and a parameter schema:
//
//	---
//	Subject: '{{ t "reset_password.subject" }}'
//	Params:
//	  to_name: string
//	  reset_url: string
//	---
//	{{ t "greeting_line" "name" .to_name }}
//
//	[!button|{{ t "reset_password.action" }}]({{ .reset_url }})
//
// Two functions are available in bodies, subjects and layouts: t translates
// a key from the configured i18n namespace, taking placeholder values as
// name/value pairs, and lang returns the render language.
//
// String parameters are stripped of HTML and markdown syntax before they
// reach the body. Subjects see the raw values.
//
// Parsed templates are cached and immutable, so a Template may be rendered
// from many goroutines at once. Rendering is deterministic.
package templates
