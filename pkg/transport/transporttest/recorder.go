// Package transporttest provides an in-memory transport.Transport.
//
// Recorder keeps every accepted message, can reject chosen recipients and
// tracks the highest number of concurrent Send calls, which makes it useful
// both in tests and as the "memory" transport for local development.
package transporttest

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/postbox/pkg/transport"
)

// Recorder is a concurrency-safe in-memory transport.
type Recorder struct {
	latency time.Duration

	mu       sync.Mutex
	sent     []transport.Message
	failures map[string]*transport.Error

	inFlight atomic.Int64
	peak     atomic.Int64
	calls    atomic.Int64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLatency makes every Send take at least d, unless its context ends first.
func WithLatency(d time.Duration) Option {
	return func(r *Recorder) {
		r.latency = d
	}
}

// WithFailure makes Send reject messages addressed to rcpt with the given
// SMTP code and text.
func WithFailure(rcpt string, code int, message string) Option {
	return func(r *Recorder) {
		r.failures[bareAddress(rcpt)] = &transport.Error{
			Code:      code,
			Message:   message,
			Temporary: code >= 400 && code < 500,
		}
	}
}

// New creates an empty Recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{failures: make(map[string]*transport.Error)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Send implements transport.Transport.
func (r *Recorder) Send(ctx context.Context, msg *transport.Message) (*transport.Response, error) {
	r.calls.Add(1)
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, &transport.Error{Err: ctx.Err(), Message: ctx.Err().Error(), Temporary: true}
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, &transport.Error{Err: err, Message: err.Error(), Temporary: true}
	}

	if msg == nil {
		return nil, &transport.Error{Message: "nil message"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.failures[bareAddress(msg.To)]; ok {
		e := *f
		return nil, &e
	}
	r.sent = append(r.sent, *msg)
	return &transport.Response{Code: 250, Lines: []string{fmt.Sprintf("2.0.0 OK queued as %d", len(r.sent))}}, nil
}

// Ping implements transport.Pinger.
func (r *Recorder) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Messages returns a copy of the accepted messages in acceptance order.
func (r *Recorder) Messages() []transport.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transport.Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// Calls reports how many times Send was invoked.
func (r *Recorder) Calls() int {
	return int(r.calls.Load())
}

// Peak reports the highest number of concurrent Send calls observed.
func (r *Recorder) Peak() int {
	return int(r.peak.Load())
}

// Reset forgets recorded messages and counters. Failures are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
	r.calls.Store(0)
	r.peak.Store(0)
}

// bareAddress reduces "Name <a@b>" and "<a@b>" to a lowercased a@b.
func bareAddress(s string) string {
	if addr, err := mail.ParseAddress(s); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(strings.TrimSpace(s))
}
