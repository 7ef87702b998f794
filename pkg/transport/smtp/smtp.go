package smtp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/dmitrymomot/postbox/pkg/transport"
)

// ErrInvalidConfig is returned by New for unusable settings.
var ErrInvalidConfig = errors.New("smtp: invalid config")

// Transport submits messages to an SMTP relay. Each Send opens its own
// connection, so a single Transport serves any number of concurrent senders.
type Transport struct {
	cfg  Config
	opts []mail.Option
}

// New validates cfg and returns a Transport for it.
func New(cfg Config) (*Transport, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePlaintext
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &Transport{cfg: cfg, opts: opts}, nil
}

func clientOptions(cfg Config) ([]mail.Option, error) {
	var opts []mail.Option

	switch cfg.Mode {
	case ModePlaintext:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case ModeStartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case ModeTLS:
		opts = append(opts, mail.WithSSL())
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}

	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.HELO != "" {
		opts = append(opts, mail.WithHELO(cfg.HELO))
	}
	if cfg.Username != "" {
		auth := mail.SMTPAuthPlain
		if cfg.Mode == ModePlaintext {
			auth = mail.SMTPAuthPlainNoEnc
		}
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	// The configured port goes last so no mode option overrides it.
	opts = append(opts, mail.WithPort(cfg.Port))
	return opts, nil
}

func (t *Transport) client() (*mail.Client, error) {
	c, err := mail.NewClient(t.cfg.Host, t.opts...)
	if err != nil {
		return nil, &transport.Error{Err: err, Message: err.Error()}
	}
	return c, nil
}

// Send delivers msg in its own SMTP session.
func (t *Transport) Send(ctx context.Context, msg *transport.Message) (*transport.Response, error) {
	m, err := buildMsg(msg)
	if err != nil {
		return nil, err
	}

	c, err := t.client()
	if err != nil {
		return nil, err
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return nil, convertError(err)
	}
	return &transport.Response{Code: 250, Lines: []string{"OK"}}, nil
}

// Ping opens and closes a session with the relay.
func (t *Transport) Ping(ctx context.Context) error {
	c, err := t.client()
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return convertError(err)
	}
	return c.Close()
}

func buildMsg(msg *transport.Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return nil, addressError("from", err)
	}
	if msg.EnvelopeFrom != "" {
		if err := m.EnvelopeFrom(msg.EnvelopeFrom); err != nil {
			return nil, addressError("envelope from", err)
		}
	}
	if err := m.To(msg.To); err != nil {
		return nil, addressError("to", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, addressError("reply-to", err)
		}
	}

	if msg.HasSubject {
		m.Subject(msg.Subject)
	}
	if msg.MessageID != "" {
		m.SetMessageIDWithValue(strings.Trim(msg.MessageID, "<>"))
	}
	if len(msg.InReplyTo) > 0 {
		m.SetGenHeader(mail.HeaderInReplyTo, strings.Join(msg.InReplyTo, " "))
	}
	if len(msg.References) > 0 {
		m.SetGenHeader(mail.HeaderReferences, strings.Join(msg.References, " "))
	}

	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func addressError(field string, err error) error {
	return &transport.Error{Err: err, Message: fmt.Sprintf("invalid %s address: %v", field, err)}
}

func convertError(err error) error {
	te := &transport.Error{Err: err, Message: err.Error()}

	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		te.Code = sendErr.ErrorCode()
		te.Temporary = sendErr.IsTemp()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		te.Temporary = true
	}
	return te
}
