package dac

import (
	"runtime"
	"time"
)

// spinWindow is how close to the deadline waitFor stops sleeping
const spinWindow = 200 * time.Microsecond

// waitFor holds the caller for d. Short waits spin so chip select timing
// isn't stretched by the scheduler.
func waitFor(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	if d > spinWindow {
		time.Sleep(d - spinWindow)
	}
	for time.Until(deadline) > 0 {
		runtime.Gosched()
	}
}
