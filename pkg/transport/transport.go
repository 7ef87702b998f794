package transport

import (
	"context"
	"strings"
)

// Message is a fully composed email ready for submission.
type Message struct {
	From         string
	EnvelopeFrom string // MAIL FROM override; From is used when empty
	To           string
	ReplyTo      string
	Subject      string
	HasSubject   bool
	MessageID    string
	InReplyTo    []string
	References   []string
	Text         string
	HTML         string
}

// Response is the acceptance reply of the relay or provider.
type Response struct {
	Code  int
	Lines []string
}

// Message joins the reply lines.
func (r *Response) Message() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Lines, "\n")
}

// Transport submits messages. Implementations must be safe for concurrent
// use by many senders.
type Transport interface {
	Send(ctx context.Context, msg *Message) (*Response, error)
}

// Pinger is implemented by transports that can check their upstream.
type Pinger interface {
	Ping(ctx context.Context) error
}
