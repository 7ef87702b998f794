package transport

import (
	"errors"
	"fmt"
)

// ErrSendFailed matches every *Error with errors.Is.
var ErrSendFailed = errors.New("transport: send failed")

// Error describes a rejected or failed submission.
// Code carries the relay status code when one was received.
type Error struct {
	Err       error
	Message   string
	Code      int
	Temporary bool
}

func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("transport: %d %s", e.Code, e.Message)
	}
	return "transport: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrSendFailed
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
