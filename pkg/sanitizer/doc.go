// Package sanitizer cleans caller supplied values before they are
// interpolated into email templates.
//
// StripHTML removes all markup using a bluemonday strict policy.
// Markdown additionally escapes inline markdown syntax so parameters cannot
// inject links, emphasis or images into a rendered email.
package sanitizer
