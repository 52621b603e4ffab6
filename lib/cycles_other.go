//go:build !linux
// +build !linux

package lib

import (
	"time"
)

var monotonicBase = time.Now()

func monotonicNanos() uint64 {
	return uint64(time.Since(monotonicBase).Nanoseconds())
}
