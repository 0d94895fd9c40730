// Package system reads host resource usage for the status endpoint.
package system

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryUsage returns the host memory usage percentage.
func MemoryUsage() (float64, error) {
	stat, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return stat.UsedPercent, nil
}

// CPUUsage samples CPU load over a short window and returns the overall
// usage percentage.
func CPUUsage() (float64, error) {
	percents, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}
