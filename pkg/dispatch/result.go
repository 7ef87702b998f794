package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/dmitrymomot/postbox/pkg/mailer"
	"github.com/dmitrymomot/postbox/pkg/transport"
)

// Status is the outcome of one request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result reports what happened to one request. Code and Message hold the
// transport reply on success; Kind and Message describe the failure otherwise.
type Result struct {
	Status  Status      `json:"status"`
	Code    int         `json:"code,omitempty"`
	Kind    mailer.Kind `json:"kind,omitempty"`
	Message string      `json:"message"`
}

// OK reports whether the request was accepted by the transport.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Success builds a result from a transport reply.
func Success(resp *transport.Response) Result {
	if resp == nil {
		return Result{Status: StatusSuccess}
	}
	return Result{
		Status:  StatusSuccess,
		Code:    resp.Code,
		Message: strings.Join(resp.Lines, "\n"),
	}
}

// Failure builds a result from a send error.
func Failure(err error) Result {
	return Result{
		Status:  StatusError,
		Kind:    mailer.KindOf(err),
		Message: err.Error(),
	}
}

// MarshalJSON keeps code out of error results and kind out of successes.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status == StatusSuccess {
		return json.Marshal(struct {
			Status  Status `json:"status"`
			Code    int    `json:"code"`
			Message string `json:"message"`
		}{r.Status, r.Code, r.Message})
	}
	return json.Marshal(struct {
		Status  Status      `json:"status"`
		Kind    mailer.Kind `json:"kind,omitempty"`
		Message string      `json:"message"`
	}{r.Status, r.Kind, r.Message})
}
