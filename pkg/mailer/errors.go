package mailer

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/postbox/pkg/htmltext"
	"github.com/dmitrymomot/postbox/pkg/i18n"
	"github.com/dmitrymomot/postbox/pkg/templates"
	"github.com/dmitrymomot/postbox/pkg/transport"
)

// Kind classifies why a single send failed.
type Kind string

const (
	KindTemplateNotFound   Kind = "TemplateNotFound"
	KindTemplateParamError Kind = "TemplateParamError"
	KindBadLanguageCode    Kind = "BadLanguageCode"
	KindRenderError        Kind = "RenderError"
	KindConversionError    Kind = "ConversionError"
	KindAddressError       Kind = "AddressError"
	KindTransportError     Kind = "TransportError"
	KindCanceled           Kind = "Canceled"
	KindInternal           Kind = "Internal"
)

// ErrInvalidAddress indicates an address field that is not valid RFC 5322.
var ErrInvalidAddress = errors.New("mailer: invalid address")

// Error is the failure of one send, tagged with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError tags err with kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the Kind of err. Errors that were not produced by this
// package are classified by their sentinel; anything else is KindInternal.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, templates.ErrTemplateNotFound):
		return KindTemplateNotFound
	case errors.Is(err, templates.ErrTemplateParams):
		return KindTemplateParamError
	case errors.Is(err, i18n.ErrBadLanguageCode):
		return KindBadLanguageCode
	case errors.Is(err, templates.ErrRenderFailed),
		errors.Is(err, templates.ErrLayoutNotFound),
		errors.Is(err, templates.ErrInvalidFrontmatter):
		return KindRenderError
	case errors.Is(err, htmltext.ErrConversion):
		return KindConversionError
	case errors.Is(err, ErrInvalidAddress):
		return KindAddressError
	case errors.Is(err, transport.ErrSendFailed):
		return KindTransportError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// wrap tags err with its classified kind, keeping an existing tag.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		return err
	}
	return &Error{Kind: classify(err), Err: err}
}

// StatusCode maps a Kind to the HTTP status reported for it.
func StatusCode(kind Kind) int {
	switch kind {
	case KindTemplateNotFound:
		return http.StatusNotFound
	case KindTemplateParamError, KindBadLanguageCode, KindAddressError:
		return http.StatusBadRequest
	case KindTransportError:
		return http.StatusBadGateway
	case KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
