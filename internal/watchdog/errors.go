package watchdog

import "errors"

// ErrExecUnsupported is returned by ExecRestarter on platforms without exec(2).
var ErrExecUnsupported = errors.New("re-exec is not supported on this platform")
