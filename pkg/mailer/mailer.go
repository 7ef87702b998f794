package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/postbox/pkg/htmltext"
	"github.com/dmitrymomot/postbox/pkg/i18n"
	"github.com/dmitrymomot/postbox/pkg/logger"
	"github.com/dmitrymomot/postbox/pkg/templates"
	"github.com/dmitrymomot/postbox/pkg/transport"
)

// Request is one email job. It is not modified by the mailer.
type Request struct {
	TemplateID string          `json:"template_id"`
	Lang       string          `json:"lang,omitempty"`
	From       string          `json:"from"`
	Sender     string          `json:"sender,omitempty"` // envelope sender, MAIL FROM
	To         string          `json:"to"`
	ReplyTo    string          `json:"reply_to,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
	MessageID  string          `json:"message_id,omitempty"`
	InReplyTo  []string        `json:"in_reply_to,omitempty"`
	References []string        `json:"references,omitempty"`
}

// Rendered is a template rendered for one recipient.
type Rendered struct {
	HTML       string
	Text       string
	Subject    string
	HasSubject bool
	Lang       string
}

// Renderer resolves a locale and template and produces both body parts.
type Renderer struct {
	i18n      *i18n.I18n
	templates *templates.Registry
	text      *htmltext.Converter
}

// NewRenderer combines the locale table, template registry and text converter.
func NewRenderer(tr *i18n.I18n, reg *templates.Registry, conv *htmltext.Converter) *Renderer {
	if conv == nil {
		conv = htmltext.New()
	}
	return &Renderer{i18n: tr, templates: reg, text: conv}
}

// Locales lists the supported locale codes, default first.
func (r *Renderer) Locales() []string {
	return r.i18n.Languages()
}

// RenderHTML renders the HTML part and subject only.
func (r *Renderer) RenderHTML(templateID string, params json.RawMessage, lang string) (*Rendered, error) {
	locale, err := r.i18n.ParseLocale(lang)
	if err != nil {
		return nil, NewError(KindBadLanguageCode, err)
	}

	tmpl, err := r.templates.Resolve(templateID)
	if err != nil {
		return nil, wrap(err)
	}

	doc, err := tmpl.Render(params, locale)
	if err != nil {
		return nil, wrap(err)
	}

	return &Rendered{
		HTML:       doc.HTML,
		Subject:    doc.Subject,
		HasSubject: doc.HasSubject,
		Lang:       locale,
	}, nil
}

// Render renders the HTML part and derives the plain-text part from it.
func (r *Renderer) Render(templateID string, params json.RawMessage, lang string) (*Rendered, error) {
	out, err := r.RenderHTML(templateID, params, lang)
	if err != nil {
		return nil, err
	}

	out.Text, err = r.text.Convert(out.HTML)
	if err != nil {
		return nil, NewError(KindConversionError, err)
	}
	return out, nil
}

// Mailer renders and submits single emails. It holds no per-send state and
// is safe for concurrent use.
type Mailer struct {
	renderer        *Renderer
	transport       transport.Transport
	logger          *slog.Logger
	messageIDDomain string
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMessageIDDomain sets the domain of generated Message-IDs.
func WithMessageIDDomain(domain string) Option {
	return func(m *Mailer) {
		m.messageIDDomain = domain
	}
}

// New creates a Mailer sending through t.
func New(t transport.Transport, r *Renderer, opts ...Option) *Mailer {
	m := &Mailer{
		renderer:  r,
		transport: t,
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Renderer returns the renderer used for sends.
func (m *Mailer) Renderer() *Renderer {
	return m.renderer
}

// Send renders req and submits it. Every failure is an *Error.
func (m *Mailer) Send(ctx context.Context, req Request) (*transport.Response, error) {
	resp, err := m.send(ctx, req)
	if err != nil {
		m.logger.WarnContext(ctx, "send failed",
			slog.String("template", req.TemplateID),
			slog.String("to", req.To),
			slog.String("kind", string(KindOf(err))),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	m.logger.DebugContext(ctx, "email sent",
		slog.String("template", req.TemplateID),
		slog.String("to", req.To),
		slog.Int("code", resp.Code),
	)
	return resp, nil
}

func (m *Mailer) send(ctx context.Context, req Request) (*transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError(KindCanceled, err)
	}

	rendered, err := m.renderer.Render(req.TemplateID, req.Params, req.Lang)
	if err != nil {
		return nil, err
	}

	msg, err := m.compose(req, rendered)
	if err != nil {
		return nil, err
	}

	resp, err := m.transport.Send(ctx, msg)
	if err != nil {
		return nil, NewError(KindTransportError, err)
	}
	if resp == nil {
		resp = &transport.Response{}
	}
	return resp, nil
}

func (m *Mailer) compose(req Request, r *Rendered) (*transport.Message, error) {
	from, err := parseAddress("from", req.From, true)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress("to", req.To, true)
	if err != nil {
		return nil, err
	}
	replyTo, err := parseAddress("reply_to", req.ReplyTo, false)
	if err != nil {
		return nil, err
	}
	sender, err := parseAddress("sender", req.Sender, false)
	if err != nil {
		return nil, err
	}

	msg := &transport.Message{
		From:       from.String(),
		To:         to.String(),
		Subject:    r.Subject,
		HasSubject: r.HasSubject,
		MessageID:  req.MessageID,
		InReplyTo:  req.InReplyTo,
		References: req.References,
		Text:       r.Text,
		HTML:       r.HTML,
	}
	if replyTo != nil {
		msg.ReplyTo = replyTo.String()
	}
	if sender != nil {
		msg.EnvelopeFrom = sender.Address
	}
	if msg.MessageID == "" {
		msg.MessageID = m.newMessageID(from.Address)
	}
	return msg, nil
}

func (m *Mailer) newMessageID(from string) string {
	domain := m.messageIDDomain
	if domain == "" {
		if at := strings.LastIndexByte(from, '@'); at >= 0 {
			domain = from[at+1:]
		}
	}
	if domain == "" {
		domain = "localhost"
	}
	return "<" + uuid.NewString() + "@" + domain + ">"
}

func parseAddress(field, value string, required bool) (*mail.Address, error) {
	if strings.TrimSpace(value) == "" {
		if !required {
			return nil, nil
		}
		return nil, NewError(KindAddressError, fmt.Errorf("%w: %s is required", ErrInvalidAddress, field))
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return nil, NewError(KindAddressError, fmt.Errorf("%w: %s %q: %v", ErrInvalidAddress, field, value, err))
	}
	return addr, nil
}
