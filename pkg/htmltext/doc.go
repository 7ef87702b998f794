// Package htmltext converts rendered email HTML into the plain-text
// alternative part.
//
// The output keeps a light markdown flavour: emphasis as *x*, strong as **x**,
// inline code in backticks, headings prefixed with '#', list items with "* "
// or "n. ", and block quotes with "> ". Links are rendered as "[text][n]"
// and collected as "[n]: url" footnotes after the body. The image carrying
// the configured logo alt text is dropped.
//
//	conv := htmltext.New(htmltext.WithLogoAlt("Postbox"))
//	text, err := conv.Convert(`<p>Hi <a href="https://example.com">there</a></p>`)
//	// "Hi [there][1]\n\n[1]: https://example.com\n"
package htmltext
