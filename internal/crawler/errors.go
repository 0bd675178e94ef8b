package crawler

import "errors"

// ErrUnexpectedStatus is returned when an upstream answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")
