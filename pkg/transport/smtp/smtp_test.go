package smtp_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/pkg/transport"
	"github.com/dmitrymomot/postbox/pkg/transport/smtp"
)

// relay is a minimal SMTP server that accepts everything except RCPT
// commands naming the rejected address.
type relay struct {
	ln       net.Listener
	rejected string

	mu   sync.Mutex
	data []string
}

func startRelay(t *testing.T, rejected string) *relay {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	r := &relay{ln: ln, rejected: rejected}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go r.serve(conn)
		}
	}()
	return r
}

func (r *relay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *relay) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.data...)
}

func (r *relay) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	rd := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

	reply("220 localhost ESMTP test")
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))

		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "RCPT"):
			if r.rejected != "" && strings.Contains(cmd, strings.ToUpper(r.rejected)) {
				reply("550 5.1.1 no such user")
				continue
			}
			reply("250 2.1.5 OK")
		case cmd == "DATA":
			reply("354 go ahead")
			var body strings.Builder
			for {
				l, err := rd.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			r.mu.Lock()
			r.data = append(r.data, body.String())
			r.mu.Unlock()
			reply("250 2.0.0 OK queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func newTransport(t *testing.T, r *relay) *smtp.Transport {
	t.Helper()
	tr, err := smtp.New(smtp.Config{
		Mode:    smtp.ModePlaintext,
		Host:    "127.0.0.1",
		Port:    r.port(),
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return tr
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  smtp.Config
	}{
		{name: "empty host", cfg: smtp.Config{Port: 25}},
		{name: "bad port", cfg: smtp.Config{Host: "localhost", Port: 70000}},
		{name: "unknown mode", cfg: smtp.Config{Host: "localhost", Port: 25, Mode: "ssl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := smtp.New(tt.cfg)
			require.ErrorIs(t, err, smtp.ErrInvalidConfig)
		})
	}
}

func TestTransportSend(t *testing.T) {
	t.Parallel()

	r := startRelay(t, "ghost@example.com")
	tr := newTransport(t, r)

	t.Run("accepted", func(t *testing.T) {
		resp, err := tr.Send(context.Background(), &transport.Message{
			From:       "Postbox <noreply@example.com>",
			To:         "alice@example.com",
			Subject:    "Welcome",
			HasSubject: true,
			MessageID:  "<id-1@example.com>",
			Text:       "plain body",
			HTML:       "<p>html body</p>",
		})
		require.NoError(t, err)
		require.Equal(t, 250, resp.Code)
		require.Equal(t, "OK", resp.Message())

		msgs := r.messages()
		require.Len(t, msgs, 1)
		require.Contains(t, msgs[0], "Subject: Welcome")
		require.Contains(t, msgs[0], "Message-ID: <id-1@example.com>")
		require.Contains(t, msgs[0], "multipart/alternative")
	})

	t.Run("rejected recipient", func(t *testing.T) {
		_, err := tr.Send(context.Background(), &transport.Message{
			From: "noreply@example.com",
			To:   "ghost@example.com",
			Text: "hi",
		})
		require.ErrorIs(t, err, transport.ErrSendFailed)

		te, ok := transport.AsError(err)
		require.True(t, ok)
		require.Equal(t, 550, te.Code)
		require.False(t, te.Temporary)
	})
}

func TestTransportPing(t *testing.T) {
	t.Parallel()

	r := startRelay(t, "")
	require.NoError(t, newTransport(t, r).Ping(context.Background()))
}

func TestTransportUnreachable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	tr, err := smtp.New(smtp.Config{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), &transport.Message{From: "a@example.com", To: "b@example.com", Text: "x"})
	require.ErrorIs(t, err, transport.ErrSendFailed)
	require.Error(t, tr.Ping(context.Background()))
}
