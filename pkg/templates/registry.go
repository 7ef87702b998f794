package templates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"

	"github.com/dmitrymomot/postbox/pkg/i18n"
)

const (
	DefaultNamespace   = "emails"
	DefaultTemplateDir = "templates"
	DefaultLayoutDir   = "layouts"
	DefaultLayout      = "base.html"

	templateExt = ".md"
)

// Registry resolves template ids to parsed templates.
// Parsed templates and layouts are cached; rendering never mutates them.
type Registry struct {
	fs   fs.FS
	i18n *i18n.I18n
	md   goldmark.Markdown

	namespace     string
	templateDir   string
	layoutDir     string
	defaultLayout string

	templates map[string]*Template
	layouts   map[string]*htmltemplate.Template
	mu        sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithNamespace sets the i18n namespace used by the "t" template function.
func WithNamespace(ns string) Option {
	return func(r *Registry) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithTemplateDir sets the directory holding <id>.md files.
func WithTemplateDir(dir string) Option {
	return func(r *Registry) {
		if dir != "" {
			r.templateDir = dir
		}
	}
}

// WithLayoutDir sets the directory holding HTML layouts.
func WithLayoutDir(dir string) Option {
	return func(r *Registry) {
		if dir != "" {
			r.layoutDir = dir
		}
	}
}

// WithDefaultLayout sets the layout used by templates that do not name one.
func WithDefaultLayout(name string) Option {
	return func(r *Registry) {
		if name != "" {
			r.defaultLayout = name
		}
	}
}

// New creates a Registry reading templates and layouts from fsys.
// Translations come from tr; a nil value means no translations.
func New(fsys fs.FS, tr *i18n.I18n, opts ...Option) *Registry {
	if tr == nil {
		tr, _ = i18n.New()
	}

	r := &Registry{
		fs:            fsys,
		i18n:          tr,
		md:            goldmark.New(goldmark.WithExtensions(ButtonExtension())),
		namespace:     DefaultNamespace,
		templateDir:   DefaultTemplateDir,
		layoutDir:     DefaultLayoutDir,
		defaultLayout: DefaultLayout,
		templates:     make(map[string]*Template),
		layouts:       make(map[string]*htmltemplate.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the template registered under id.
func (r *Registry) Resolve(id string) (*Template, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	r.mu.RLock()
	if t, ok := r.templates[id]; ok {
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.templates[id]; ok {
		return t, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, id+templateExt))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
		}
		return nil, fmt.Errorf("%w: reading %q: %v", ErrRenderFailed, id, err)
	}

	t, err := r.parse(id, content)
	if err != nil {
		return nil, err
	}

	r.templates[id] = t
	return t, nil
}

// IDs lists the available template ids in sorted order.
func (r *Registry) IDs() ([]string, error) {
	entries, err := fs.ReadDir(r.fs, r.templateDir)
	if err != nil {
		return nil, fmt.Errorf("templates: listing %q: %w", r.templateDir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != templateExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), templateExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// Preload parses every template and the layouts they use, so broken
// templates fail at startup instead of on first send.
func (r *Registry) Preload() error {
	ids, err := r.IDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		t, err := r.Resolve(id)
		if err != nil {
			return err
		}
		if _, err := r.layout(t.layout); err != nil {
			return fmt.Errorf("template %q: %w", id, err)
		}
	}
	return nil
}

func (r *Registry) parse(id string, content []byte) (*Template, error) {
	meta, body, err := ParseSource(content)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", id, err)
	}

	bodyTmpl, err := newText(id).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrRenderFailed, id, err)
	}

	var subject *texttemplate.Template
	if s := strings.TrimSpace(meta.Subject); s != "" {
		subject, err = newText(id + ".subject").Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %q subject: %v", ErrRenderFailed, id, err)
		}
	}

	layout := meta.Layout
	if layout == "" {
		layout = r.defaultLayout
	}

	return &Template{
		ID:      id,
		reg:     r,
		schema:  meta.Params,
		layout:  layout,
		subject: subject,
		body:    bodyTmpl,
	}, nil
}

func (r *Registry) layout(name string) (*htmltemplate.Template, error) {
	r.mu.RLock()
	if l, ok := r.layouts[name]; ok {
		r.mu.RUnlock()
		return l, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.layouts[name]; ok {
		return l, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	l, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(stubFuncs)).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing layout %q: %v", ErrRenderFailed, name, err)
	}

	r.layouts[name] = l
	return l, nil
}

// stubFuncs declares the per-render functions at parse time; every render
// binds real implementations on a clone.
var stubFuncs = map[string]any{
	"t":    func(string, ...any) string { return "" },
	"lang": func() string { return "" },
}

func newText(name string) *texttemplate.Template {
	return texttemplate.New(name).Option("missingkey=error").Funcs(stubFuncs)
}

// Template is a parsed email template. It is immutable and safe for
// concurrent rendering.
type Template struct {
	ID string

	reg     *Registry
	schema  Schema
	layout  string
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// Document is the HTML rendering of a template.
type Document struct {
	HTML       string
	Subject    string
	HasSubject bool
}

// layoutData is what layouts receive as dot.
type layoutData struct {
	Content  htmltemplate.HTML
	Subject  string
	Lang     string
	Template string
}

// Params returns the declared parameter schema.
func (t *Template) Params() Schema {
	return t.schema
}

// Render executes the template for the given parameters and language.
// The result depends only on its inputs.
func (t *Template) Render(params json.RawMessage, lang string) (*Document, error) {
	values, err := t.schema.Decode(params)
	if err != nil {
		return nil, err
	}

	tr := i18n.NewTranslator(t.reg.i18n, lang, t.reg.namespace)
	funcs := map[string]any{
		"t":    tr.Pairs,
		"lang": tr.Language,
	}

	var markdown bytes.Buffer
	if err := executeText(t.body, funcs, &markdown, sanitizeValues(values)); err != nil {
		return nil, execError(t.ID, err)
	}

	var content bytes.Buffer
	if err := t.reg.md.Convert(markdown.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %q: converting markdown: %v", ErrRenderFailed, t.ID, err)
	}

	doc := &Document{}
	if t.subject != nil {
		var subject strings.Builder
		if err := executeText(t.subject, funcs, &subject, values); err != nil {
			return nil, execError(t.ID+" subject", err)
		}
		doc.Subject = strings.Join(strings.Fields(subject.String()), " ")
		doc.HasSubject = true
	}

	layout, err := t.reg.layout(t.layout)
	if err != nil {
		return nil, err
	}
	lt, err := layout.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: cloning layout %q: %v", ErrRenderFailed, t.layout, err)
	}

	var out bytes.Buffer
	err = lt.Funcs(htmltemplate.FuncMap(funcs)).Execute(&out, layoutData{
		Content:  htmltemplate.HTML(content.String()),
		Subject:  doc.Subject,
		Lang:     tr.Language(),
		Template: t.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: executing layout: %v", ErrRenderFailed, t.ID, err)
	}

	doc.HTML = out.String()
	return doc, nil
}

func executeText(tmpl *texttemplate.Template, funcs map[string]any, w io.Writer, data any) error {
	clone, err := tmpl.Clone()
	if err != nil {
		return err
	}
	return clone.Funcs(texttemplate.FuncMap(funcs)).Execute(w, data)
}

// missingKey is how text/template reports, under missingkey=error, a
// reference to a parameter the payload does not hold.
const missingKey = "map has no entry for key"

// execError classifies a template execution failure. A missing parameter is
// the caller's error; anything else is a render failure.
func execError(name string, err error) error {
	if strings.Contains(err.Error(), missingKey) {
		return fmt.Errorf("%w: %q: %v", ErrTemplateParams, name, err)
	}
	return fmt.Errorf("%w: %q: %v", ErrRenderFailed, name, err)
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
