package templates

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ButtonClass is the CSS class put on rendered call-to-action links.
const ButtonClass = "button"

// buttonPrefix opens the call-to-action syntax: [!button|Label](URL).
var buttonPrefix = []byte("[!button|")

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

// ButtonNode is a call-to-action link in the markdown AST.
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

// Kind implements ast.Node.
func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

// Dump implements ast.Node.
func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

type buttonParser struct{}

func (p *buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (p *buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, buttonPrefix) {
		return nil
	}

	rest := line[len(buttonPrefix):]
	labelEnd := bytes.IndexByte(rest, ']')
	if labelEnd < 0 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}

	dest := rest[labelEnd+2:]
	urlEnd := bytes.IndexByte(dest, ')')
	if urlEnd < 0 {
		return nil
	}

	block.Advance(len(buttonPrefix) + labelEnd + 2 + urlEnd + 1)

	return &ButtonNode{
		URL:   unescape(dest[:urlEnd]),
		Label: unescape(rest[:labelEnd]),
	}
}

// unescape resolves backslash escapes and character references the same
// way goldmark does for regular link destinations.
func unescape(b []byte) []byte {
	b = util.UnescapePunctuations(bytes.TrimSpace(b))
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}

type buttonRenderer struct {
	html.Config
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.renderButton)
}

func (r *buttonRenderer) renderButton(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ButtonNode)

	_, _ = w.WriteString(`<a href="`)
	if !html.IsDangerousURL(n.URL) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, true)))
	}
	_, _ = w.WriteString(`" class="` + ButtonClass + `">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)

	return ast.WalkContinue, nil
}

type buttonExtension struct{}

func (e *buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&buttonParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&buttonRenderer{Config: html.NewConfig()}, 50),
	))
}

// ButtonExtension returns the goldmark extension that renders
// [!button|Label](URL) as a styled call-to-action link.
func ButtonExtension() goldmark.Extender {
	return &buttonExtension{}
}
