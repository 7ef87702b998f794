package internal

import (
	"errors"
	"net/http"
)

// HTTPError is an error carrying everything needed to render an error
// response.
type HTTPError struct {
	// Err is the underlying error, logged but not exposed.
	Err error

	// Message is the client-facing message.
	Message string

	// ErrorCode is a machine-readable code clients can switch on.
	ErrorCode string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrRequestTooLarge(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// IsHTTPError reports whether err's chain contains an HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError extracts the HTTPError from err's chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
