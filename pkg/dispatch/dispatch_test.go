package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/pkg/dispatch"
	"github.com/dmitrymomot/postbox/pkg/htmltext"
	"github.com/dmitrymomot/postbox/pkg/i18n"
	"github.com/dmitrymomot/postbox/pkg/mailer"
	"github.com/dmitrymomot/postbox/pkg/templates"
	"github.com/dmitrymomot/postbox/pkg/transport"
	"github.com/dmitrymomot/postbox/pkg/transport/transporttest"
)

// funcSender adapts a function to dispatch.Sender.
type funcSender func(ctx context.Context, req mailer.Request) (*transport.Response, error)

func (f funcSender) Send(ctx context.Context, req mailer.Request) (*transport.Response, error) {
	return f(ctx, req)
}

func requests(n int) []mailer.Request {
	reqs := make([]mailer.Request, n)
	for i := range reqs {
		reqs[i] = mailer.Request{TemplateID: "basic", To: fmt.Sprintf("user%d@example.com", i)}
	}
	return reqs
}

// echo replies with the recipient so results can be matched to requests.
func echo(delay func(i int) time.Duration) funcSender {
	return func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
		var i int
		_, _ = fmt.Sscanf(req.To, "user%d@", &i)
		if delay != nil {
			time.Sleep(delay(i))
		}
		return &transport.Response{Code: 250, Lines: []string{req.To}}, nil
	}
}

func TestBulkPreservesOrder(t *testing.T) {
	t.Parallel()

	const n = 40
	// Later items finish first.
	engine := dispatch.New(echo(func(i int) time.Duration {
		return time.Duration(n-i) * 200 * time.Microsecond
	}), dispatch.WithConcurrency(8))

	results, err := engine.Bulk(context.Background(), requests(n))
	require.NoError(t, err)
	require.Len(t, results, n)
	for i, r := range results {
		require.True(t, r.OK())
		require.Equal(t, 250, r.Code)
		require.Equal(t, fmt.Sprintf("user%d@example.com", i), r.Message)
	}
}

func TestBulkEmpty(t *testing.T) {
	t.Parallel()

	results, err := dispatch.New(echo(nil)).Bulk(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
}

func TestBulkIsolatesFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	sender := funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
		calls.Add(1)
		if req.To == "user2@example.com" {
			return nil, mailer.NewError(mailer.KindTransportError, &transport.Error{Code: 550, Message: "mailbox unavailable"})
		}
		return &transport.Response{Code: 250, Lines: []string{"OK"}}, nil
	})

	results, err := dispatch.New(sender).Bulk(context.Background(), requests(5))
	require.NoError(t, err)
	require.Len(t, results, 5)
	require.EqualValues(t, 5, calls.Load())

	for i, r := range results {
		if i == 2 {
			require.Equal(t, dispatch.StatusError, r.Status)
			require.Equal(t, mailer.KindTransportError, r.Kind)
			require.Contains(t, r.Message, "550 mailbox unavailable")
			continue
		}
		require.Equal(t, dispatch.Result{Status: dispatch.StatusSuccess, Code: 250, Message: "OK"}, r)
	}
}

func TestBulkRespectsConcurrency(t *testing.T) {
	t.Parallel()

	for _, k := range []int{1, 3, 6} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			t.Parallel()

			rec := transporttest.New(transporttest.WithLatency(5 * time.Millisecond))
			sender := funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
				return rec.Send(ctx, &transport.Message{To: req.To})
			})

			results, err := dispatch.New(sender, dispatch.WithConcurrency(k)).Bulk(context.Background(), requests(30))
			require.NoError(t, err)
			require.Len(t, results, 30)
			require.Equal(t, 30, rec.Calls())
			require.LessOrEqual(t, rec.Peak(), k)
			require.GreaterOrEqual(t, rec.Peak(), 1)
		})
	}
}

func TestBulkRecoversPanics(t *testing.T) {
	t.Parallel()

	sender := funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
		if req.To == "user1@example.com" {
			panic("template exploded")
		}
		return &transport.Response{Code: 250, Lines: []string{"OK"}}, nil
	})

	results, err := dispatch.New(sender).Bulk(context.Background(), requests(3))
	require.NoError(t, err)
	require.True(t, results[0].OK())
	require.Equal(t, mailer.KindInternal, results[1].Kind)
	require.Contains(t, results[1].Message, "template exploded")
	require.True(t, results[2].OK())
}

func TestBulkCanceled(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		sender := funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
			calls.Add(1)
			return &transport.Response{Code: 250}, nil
		})

		results, err := dispatch.New(sender).Bulk(ctx, requests(4))
		require.NoError(t, err)
		require.Len(t, results, 4)
		require.Zero(t, calls.Load())
		for _, r := range results {
			require.Equal(t, mailer.KindCanceled, r.Kind)
			require.True(t, strings.HasPrefix(r.Message, "Canceled: "))
		}
	})

	t.Run("mid batch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var (
			started atomic.Int32
			once    sync.Once
		)
		sender := funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
			started.Add(1)
			once.Do(cancel)
			<-ctx.Done()
			return nil, mailer.NewError(mailer.KindTransportError, &transport.Error{Err: ctx.Err(), Message: ctx.Err().Error()})
		})

		results, err := dispatch.New(sender, dispatch.WithConcurrency(2)).Bulk(ctx, requests(10))
		require.NoError(t, err)
		require.Len(t, results, 10)
		require.LessOrEqual(t, started.Load(), int32(2))
		for _, r := range results {
			require.Equal(t, dispatch.StatusError, r.Status)
		}
		require.Equal(t, mailer.KindCanceled, results[9].Kind)
	})
}

func TestBulkTooLarge(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	sender := funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
		calls.Add(1)
		return &transport.Response{Code: 250}, nil
	})

	engine := dispatch.New(sender, dispatch.WithMaxBatch(3))
	_, err := engine.Bulk(context.Background(), requests(4))
	require.ErrorIs(t, err, dispatch.ErrBatchTooLarge)
	require.Zero(t, calls.Load())

	results, err := engine.Bulk(context.Background(), requests(3))
	require.NoError(t, err)
	require.Len(t, results, 3)
}

func TestSingle(t *testing.T) {
	t.Parallel()

	engine := dispatch.New(funcSender(func(ctx context.Context, req mailer.Request) (*transport.Response, error) {
		if req.TemplateID == "nope" {
			return nil, mailer.NewError(mailer.KindTemplateNotFound, templates.ErrTemplateNotFound)
		}
		return &transport.Response{Code: 250, Lines: []string{"OK"}}, nil
	}))
	require.Equal(t, dispatch.DefaultConcurrency, engine.Concurrency())

	ok := engine.Single(context.Background(), mailer.Request{TemplateID: "basic"})
	require.Equal(t, dispatch.Result{Status: dispatch.StatusSuccess, Code: 250, Message: "OK"}, ok)

	failed := engine.Single(context.Background(), mailer.Request{TemplateID: "nope"})
	require.Equal(t, mailer.KindTemplateNotFound, failed.Kind)
	require.Equal(t, "TemplateNotFound: templates: template not found", failed.Message)
}

func TestResultJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(dispatch.Result{Status: dispatch.StatusSuccess, Code: 250, Message: "OK"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","code":250,"message":"OK"}`, string(b))

	b, err = json.Marshal(dispatch.Failure(mailer.NewError(mailer.KindTemplateNotFound, errors.New("nope"))))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","kind":"TemplateNotFound","message":"TemplateNotFound: nope"}`, string(b))
}

// TestBulkEndToEnd runs the full pipeline against the in-memory transport.
func TestBulkEndToEnd(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"layouts/base.html":  {Data: []byte(`<html><body>{{ .Content }}</body></html>`)},
		"templates/basic.md": {Data: []byte("Hello!\n")},
	}
	strs, err := i18n.New(i18n.WithLanguages("en", "es"))
	require.NoError(t, err)

	rec := transporttest.New()
	m := mailer.New(rec, mailer.NewRenderer(strs, templates.New(fsys, strs), htmltext.New()))
	engine := dispatch.New(m)

	results, err := engine.Bulk(context.Background(), []mailer.Request{
		{TemplateID: "basic", Lang: "en", From: "noreply@example.com", To: "alice@example.com"},
		{TemplateID: "nonexistent", From: "noreply@example.com", To: "bob@example.com"},
		{TemplateID: "basic", From: "noreply@example.com", To: "not-an-address"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, dispatch.StatusSuccess, results[0].Status)
	require.Equal(t, 250, results[0].Code)

	require.Equal(t, dispatch.StatusError, results[1].Status)
	require.Contains(t, results[1].Message, "TemplateNotFound")

	require.Equal(t, dispatch.StatusError, results[2].Status)
	require.Equal(t, mailer.KindAddressError, results[2].Kind)
	require.Contains(t, results[2].Message, "address")

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "<alice@example.com>", msgs[0].To)
	require.Equal(t, "Hello!\n", msgs[0].Text)
}
