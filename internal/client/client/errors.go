package client

import "errors"

// ErrUnavailable wraps failures where no response arrived at all.
var ErrUnavailable = errors.New("server unavailable")
