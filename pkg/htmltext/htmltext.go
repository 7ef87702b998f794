package htmltext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrConversion is returned when the input cannot be converted.
var ErrConversion = errors.New("htmltext: conversion failed")

// Converter turns rendered email HTML into a readable plain-text body.
// A Converter holds no mutable state and is safe for concurrent use.
type Converter struct {
	logoAlt string
	width   int
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogoAlt sets the alt text that marks the logo image. Images carrying
// it are omitted from the text output.
func WithLogoAlt(alt string) Option {
	return func(c *Converter) {
		c.logoAlt = alt
	}
}

// WithWidth wraps body lines at the given column. Zero disables wrapping.
// Footnote lines are never wrapped.
func WithWidth(width int) Option {
	return func(c *Converter) {
		if width >= 0 {
			c.width = width
		}
	}
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert renders src as plain text. Links become "[text][n]" references
// with "[n]: url" footnotes appended after the body.
func (c *Converter) Convert(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}

	w := &writer{conv: c, lineStart: true}
	w.walk(doc)

	body := strings.TrimRightFunc(w.buf.String(), unicode.IsSpace)
	if c.width > 0 {
		body = wrap(body, c.width)
	}

	var out strings.Builder
	out.WriteString(body)
	if len(w.links) > 0 {
		if body != "" {
			out.WriteString("\n\n")
		}
		for i, href := range w.links {
			fmt.Fprintf(&out, "[%d]: %s\n", i+1, href)
		}
		return out.String(), nil
	}
	if body != "" {
		out.WriteByte('\n')
	}
	return out.String(), nil
}

type list struct {
	ordered bool
	n       int
}

type writer struct {
	conv  *Converter
	buf   strings.Builder
	links []string
	lists []list

	quoteDepth int
	breaks     int
	space      bool
	lineStart  bool
	pre        bool
}

// block requests at least n newlines before the next content.
func (w *writer) block(n int) {
	if w.buf.Len() == 0 {
		return
	}
	w.breaks = max(w.breaks, n)
	w.space = false
}

// emit writes inline content, flushing pending breaks and spaces first.
func (w *writer) emit(s string) {
	if s == "" {
		return
	}
	if w.breaks > 0 {
		for range w.breaks {
			w.buf.WriteByte('\n')
		}
		w.breaks = 0
		w.lineStart = true
		w.space = false
	}
	if w.lineStart {
		w.buf.WriteString(strings.Repeat("> ", w.quoteDepth))
		w.lineStart = false
		w.space = false
	} else if w.space {
		w.buf.WriteByte(' ')
	}
	w.space = false
	w.buf.WriteString(s)
}

// emitClose writes a closing marker right after the last content, ahead of
// any pending space or break, so "<em>a </em>b" renders as "*a* b".
func (w *writer) emitClose(s string) {
	if w.buf.Len() == 0 {
		return
	}
	w.buf.WriteString(s)
}

func (w *writer) text(s string) {
	if w.pre {
		for i, line := range strings.Split(s, "\n") {
			if i > 0 {
				w.breaks++
			}
			w.emit(line)
		}
		return
	}

	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			w.emit(word.String())
			word.Reset()
		}
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			w.space = true
			continue
		}
		word.WriteRune(r)
	}
	flush()
}

func (w *writer) children(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		w.walk(child)
	}
}

func (w *writer) walk(n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		w.children(n)
		return
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Head, atom.Style, atom.Script, atom.Title, atom.Template, atom.Noscript:
		return

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		w.block(2)
		w.emit(strings.Repeat("#", level) + " ")
		w.space = false
		w.children(n)
		w.block(2)

	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Center, atom.Table:
		w.block(2)
		w.children(n)
		w.block(2)

	case atom.Tr:
		w.block(1)
		w.children(n)
		w.block(1)

	case atom.Td, atom.Th:
		w.space = true
		w.children(n)
		w.space = true

	case atom.Blockquote:
		w.block(2)
		w.quoteDepth++
		w.children(n)
		w.quoteDepth--
		w.block(2)

	case atom.Ul, atom.Ol:
		if len(w.lists) == 0 {
			w.block(2)
		} else {
			w.block(1)
		}
		w.lists = append(w.lists, list{ordered: n.DataAtom == atom.Ol})
		w.children(n)
		w.lists = w.lists[:len(w.lists)-1]
		if len(w.lists) == 0 {
			w.block(2)
		} else {
			w.block(1)
		}

	case atom.Li:
		w.block(1)
		w.emit(w.listMarker())
		w.space = false
		w.children(n)
		w.block(1)

	case atom.Br:
		if w.buf.Len() > 0 {
			w.breaks++
		}
		w.space = false

	case atom.Hr:
		w.block(2)
		w.emit("---")
		w.block(2)

	case atom.Pre:
		w.block(2)
		w.pre = true
		w.children(n)
		w.pre = false
		w.block(2)

	case atom.Em, atom.I:
		w.wrapInline(n, "*", "*")

	case atom.Strong, atom.B:
		w.wrapInline(n, "**", "**")

	case atom.Code:
		if w.pre {
			w.children(n)
			return
		}
		w.wrapInline(n, "`", "`")

	case atom.Sup:
		w.wrapInline(n, "^{", "}")

	case atom.Img:
		alt := strings.TrimSpace(attr(n, "alt"))
		if alt == "" || alt == w.conv.logoAlt {
			return
		}
		w.emit("[" + alt + "]")

	case atom.A:
		w.link(n)

	default:
		w.children(n)
	}
}

func (w *writer) wrapInline(n *html.Node, open, closing string) {
	if !w.hasContent(n) {
		return
	}
	w.emit(open)
	w.space = false
	w.children(n)
	w.emitClose(closing)
}

func (w *writer) link(n *html.Node) {
	href := strings.TrimSpace(attr(n, "href"))
	if !w.hasContent(n) {
		return
	}
	if href == "" || strings.HasPrefix(href, "#") {
		w.children(n)
		return
	}

	w.emit("[")
	w.space = false
	w.children(n)
	w.links = append(w.links, href)
	w.emitClose("][" + strconv.Itoa(len(w.links)) + "]")
}

func (w *writer) listMarker() string {
	depth := len(w.lists)
	if depth == 0 {
		return "* "
	}
	indent := strings.Repeat("  ", depth-1)
	l := &w.lists[depth-1]
	if l.ordered {
		l.n++
		return indent + strconv.Itoa(l.n) + ". "
	}
	return indent + "* "
}

// hasContent reports whether n would produce any visible text.
func (w *writer) hasContent(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) != ""
	case html.ElementNode:
		if n.DataAtom == atom.Img {
			alt := strings.TrimSpace(attr(n, "alt"))
			return alt != "" && alt != w.conv.logoAlt
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if w.hasContent(child) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
