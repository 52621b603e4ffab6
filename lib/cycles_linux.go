//go:build linux
// +build linux

package lib

import (
	"golang.org/x/sys/unix"
)

// monotonicNanos reads CLOCK_MONOTONIC_RAW, the closest portable stand-in
// for a raw TSC read: monotonic and unaffected by NTP slewing.
func monotonicNanos() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return 0
	}
	return uint64(ts.Sec)*1_000_000_000 + uint64(ts.Nsec)
}
