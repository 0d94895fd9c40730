package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryUsage(t *testing.T) {
	percent, err := MemoryUsage()

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, percent, float64(0), "Memory usage should be non-negative")
	assert.LessOrEqual(t, percent, float64(100), "Memory usage should not exceed 100%")
}

func TestCPUUsage(t *testing.T) {
	percent, err := CPUUsage()

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, percent, float64(0), "CPU usage should be non-negative")
	assert.LessOrEqual(t, percent, float64(100), "CPU usage should not exceed 100%")
}
