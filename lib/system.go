package lib

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const cpuClockPath = "/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq"

// defaultCpuClock is used when the CPU clock cannot be discovered; stamps
// then count nanoseconds instead of cycles, which keeps them monotonic.
const defaultCpuClock = 1_000_000_000

// SystemData holds process-wide facts discovered once at startup.
type SystemData struct {
	CpuClock uint64 // base clock for cycle stamps, in Hz
}

// DetectSystemData reads the CPU base clock from sysfs.
func DetectSystemData() (*SystemData, error) {
	raw, err := os.ReadFile(cpuClockPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", cpuClockPath, err)
	}
	khz, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", cpuClockPath, err)
	}
	return &SystemData{CpuClock: khz * 1000}, nil
}

// CyclesToDuration converts a cycle-stamp difference to wall time.
func (s *SystemData) CyclesToDuration(cycles uint64) time.Duration {
	return time.Duration(float64(cycles) / float64(s.CpuClock) * float64(time.Second))
}

var (
	cpuHz  uint64 = defaultCpuClock
	cpuMHz uint64 = defaultCpuClock / 1_000_000
)

func init() {
	sd, err := DetectSystemData()
	if err != nil {
		log.Debugf("cpu clock detection failed, using %d Hz: %v", defaultCpuClock, err)
		return
	}
	SetCpuClock(sd.CpuClock)
}

// SetCpuClock overrides the clock used to scale cycle stamps. Call before
// any records are created; stamps taken under different clocks do not
// compare.
func SetCpuClock(hz uint64) {
	if hz == 0 {
		return
	}
	cpuHz = hz
	cpuMHz = hz / 1_000_000
	if cpuMHz == 0 {
		cpuMHz = 1
	}
}

// CpuClock returns the clock currently used for cycle stamps, in Hz.
func CpuClock() uint64 { return cpuHz }

// Cycles returns a monotonic cycle stamp. It is the tracker's only external
// effect on the hot path; stamps are unsynchronized across cores.
func Cycles() uint64 {
	ns := monotonicNanos()
	return (ns/1_000_000_000)*cpuHz + (ns%1_000_000_000)*cpuMHz/1000
}
