package proof

import "github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"

// CurrentTimestamp returns the host's wall-clock time in milliseconds
// since the Unix epoch, the unit proof record timestamps use.
func CurrentTimestamp() uint64 {
	return ports.SystemClock{}.Now()
}
