package watchdog

import (
	"sync/atomic"
	"time"
)

// Liveness is the timestamp of the last sign of life.
// It is safe for concurrent use and must be shared by pointer.
type Liveness struct {
	last atomic.Int64
}

// NewLiveness creates a cell last touched at now.
func NewLiveness(now time.Time) *Liveness {
	l := &Liveness{}
	l.Touch(now)
	return l
}

// Touch records a sign of life at now.
func (l *Liveness) Touch(now time.Time) {
	l.last.Store(now.UnixNano())
}

// Last returns the time of the most recent Touch.
func (l *Liveness) Last() time.Time {
	return time.Unix(0, l.last.Load())
}

// Stale reports whether more than threshold has passed since the last Touch.
func (l *Liveness) Stale(now time.Time, threshold time.Duration) bool {
	return now.Sub(l.Last()) > threshold
}
