//go:build linux || darwin

package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// MonotonicRaw returns the current time from CLOCK_MONOTONIC_RAW, which is
// immune to NTP adjustments and so is suitable for stamping atime on images:
// eviction ordering must never jump backwards because the system clock was
// stepped.
func MonotonicRaw() (time.Time, error) {
	ts := unix.Timespec{}
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return time.Time{}, err
	}
	s, ns := ts.Unix()
	return time.Unix(s, ns), nil
}
