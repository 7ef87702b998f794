package health

import "errors"

// ErrCheckTimeout marks a check that did not finish within the timeout.
var ErrCheckTimeout = errors.New("health: check timeout")
