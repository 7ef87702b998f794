package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PanicError is a handler panic recovered by Recover.
type PanicError struct {
	Value  any
	Stack  []byte // nil when stack capture is disabled
	Method string
	Path   string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StatusCode is the HTTP status a panic is answered with.
func (e *PanicError) StatusCode() int {
	return http.StatusInternalServerError
}

// TimeoutError reports a request whose handler produced no response before
// its deadline.
type TimeoutError struct {
	Duration time.Duration
	Path     string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// StatusCode is the HTTP status a timed out request is answered with.
func (e *TimeoutError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// IsPanicError reports whether err wraps a *PanicError.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

// IsTimeoutError reports whether err wraps a *TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

// AsPanicError returns the *PanicError wrapped by err.
func AsPanicError(err error) (*PanicError, bool) {
	return as[*PanicError](err)
}

// AsTimeoutError returns the *TimeoutError wrapped by err.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	return as[*TimeoutError](err)
}

func as[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}
