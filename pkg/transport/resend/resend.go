package resend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/postbox/pkg/transport"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("resend: missing api key")

// Transport implements transport.Transport using the Resend API.
type Transport struct {
	client *resend.Client
}

// New creates a Resend transport. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) (*Transport, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var client *resend.Client
	if httpClient != nil {
		client = resend.NewCustomClient(httpClient, cfg.APIKey)
	} else {
		client = resend.NewClient(cfg.APIKey)
	}

	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("resend: base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Transport{client: client}, nil
}

// Send implements transport.Transport.
func (t *Transport) Send(ctx context.Context, msg *transport.Message) (*transport.Response, error) {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Headers: headers(msg),
	}

	resp, err := t.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, &transport.Error{
			Err:       err,
			Message:   err.Error(),
			Temporary: errors.Is(err, context.DeadlineExceeded),
		}
	}

	return &transport.Response{Code: http.StatusOK, Lines: []string{resp.Id}}, nil
}

func headers(msg *transport.Message) map[string]string {
	h := make(map[string]string, 3)
	if msg.MessageID != "" {
		h["Message-ID"] = msg.MessageID
	}
	if len(msg.InReplyTo) > 0 {
		h["In-Reply-To"] = strings.Join(msg.InReplyTo, " ")
	}
	if len(msg.References) > 0 {
		h["References"] = strings.Join(msg.References, " ")
	}
	if len(h) == 0 {
		return nil
	}
	return h
}
