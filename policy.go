package scrollkeeper

import "time"

// How a [Keeper] decides that the current log file is due for rotation.
type rotationMode int

const (
	// Rotate when the current log file grows past [WithMaxSize] or has been
	// collecting messages for longer than [WithMaxInterval], whichever
	// happens first.
	rotateByThreshold rotationMode = iota
	// Rotate when a write lands on a later calendar day than the one the
	// current log file started on. See [WithDailyRotation].
	rotateDaily
)

// Whether the current log file is due for rotation at the given time.
// Callers must hold mu.
func (k *Keeper) shouldRotate(at time.Time) bool {
	// Not fully configured yet, there is nowhere to rotate into.
	if k.archiveFolder == "" {
		return false
	}
	switch k.mode {
	case rotateDaily:
		return startOfDay(at).After(k.since)
	default:
		if k.maxSize > 0 && k.currentSize >= k.maxSize {
			return true
		}
		return k.maxInterval > 0 && at.Sub(k.since) >= k.maxInterval
	}
}

// The midnight starting the calendar day that t belongs to, in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
