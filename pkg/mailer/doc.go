// Package mailer renders a template for one recipient and submits it.
//
// A Renderer resolves the locale, renders the template to HTML and derives
// the plain-text alternative. A Mailer composes both parts with the address
// and threading headers of a Request and hands the result to a
// transport.Transport:
//
//	renderer := mailer.NewRenderer(strings, registry, htmltext.New(htmltext.WithLogoAlt("Postbox")))
//	m := mailer.New(smtpTransport, renderer, mailer.WithLogger(log))
//
//	resp, err := m.Send(ctx, mailer.Request{
//		TemplateID: "reset_password",
//		Lang:       "es",
//		From:       "Postbox <noreply@example.com>",
//		To:         "alice@example.com",
//		Params:     json.RawMessage(`{"to_name":"Alice","reset_url":"https://example.com/r/1"}`),
//	})
//
// # Errors
//
// Every failure is an *Error tagged with a Kind (TemplateNotFound,
// TemplateParamError, BadLanguageCode, RenderError, ConversionError,
// AddressError, TransportError, Canceled, Internal). KindOf extracts it and
// StatusCode maps it to the HTTP status reported to callers.
//
// A missing Message-ID is generated as <uuid@domain>; supplied Message-ID,
// In-Reply-To and References values are passed through unchanged.
package mailer
