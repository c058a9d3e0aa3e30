package ports

import "time"

// Clock supplies the current time for freshness evaluation.
// Injectable so freshness tests are deterministic.
type Clock interface {
	// Now returns milliseconds since the Unix epoch.
	Now() uint64
}

// SystemClock reads the host's wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time in ms since the epoch.
func (SystemClock) Now() uint64 {
	return uint64(time.Now().UnixMilli())
}
