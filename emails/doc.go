// Package emails embeds the stock email templates, their HTML layout and
// the en and es string tables.
//
// Every template uses the "emails" i18n namespace. Parameters are declared in
// each template's frontmatter; list parameters hold objects whose keys are
// all required.
package emails
