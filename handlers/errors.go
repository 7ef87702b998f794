package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/postbox/internal"
	"github.com/dmitrymomot/postbox/middlewares"
	"github.com/dmitrymomot/postbox/pkg/mailer"
)

// Error codes for failures that have no mailer.Kind.
const (
	CodeBadRequest      = "BadRequest"
	CodeBatchTooLarge   = "BatchTooLarge"
	CodeRequestTooLarge = "RequestTooLarge"
	CodeNotFound        = "NotFound"
	CodeTimeout         = "Timeout"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorHandler renders handler errors as ErrorResponse JSON.
// Messages of unexpected errors are logged, not sent.
func ErrorHandler(c internal.Context, err error) error {
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		code := httpErr.ErrorCode
		if code == "" {
			code = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{Error: httpErr.Message, Code: code})
	}

	var mailErr *mailer.Error
	if errors.As(err, &mailErr) {
		return c.JSON(mailer.StatusCode(mailErr.Kind), ErrorResponse{Error: mailErr.Error(), Code: string(mailErr.Kind)})
	}

	if te, ok := middlewares.AsTimeoutError(err); ok {
		return c.JSON(te.StatusCode(), ErrorResponse{Error: te.Error(), Code: CodeTimeout})
	}

	if pe, ok := middlewares.AsPanicError(err); ok {
		c.LogError("handler panic", "panic", pe.Value, "method", pe.Method, "path", pe.Path)
	} else {
		c.LogError("unhandled error", "error", err)
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
		Code:  string(mailer.KindInternal),
	})
}

// NotFound answers unknown routes.
func NotFound(c internal.Context) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found", Code: CodeNotFound})
}

// mailError turns a render or send failure into an HTTP error carrying its kind.
func mailError(err error) error {
	kind := mailer.KindOf(err)
	return internal.NewHTTPError(mailer.StatusCode(kind), err.Error(),
		internal.WithErrorCode(string(kind)),
		internal.WithError(err),
	)
}

func bodyError(err error) error {
	if errors.Is(err, internal.ErrBodyTooLarge) {
		return internal.ErrRequestTooLarge(err.Error(),
			internal.WithErrorCode(CodeRequestTooLarge),
			internal.WithError(err),
		)
	}
	return internal.ErrBadRequest(err.Error(),
		internal.WithErrorCode(CodeBadRequest),
		internal.WithError(err),
	)
}
