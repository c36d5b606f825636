// Package monitor samples host resources and raises alerts when they cross
// the configured system thresholds.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Sample holds host usage percentages in [0,100].
type Sample struct {
	CPU    float64
	Memory float64
	Disk   float64
}

type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// HostSampler reads CPU, memory and disk usage with gopsutil.
type HostSampler struct {
	diskPath  string
	cpuWindow time.Duration
}

func NewHostSampler(diskPath string) *HostSampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &HostSampler{diskPath: diskPath, cpuWindow: time.Second}
}

func (s *HostSampler) Sample(ctx context.Context) (Sample, error) {
	cpuPercent, err := cpu.PercentWithContext(ctx, s.cpuWindow, false)
	if err != nil {
		return Sample{}, fmt.Errorf("sample cpu: %w", err)
	}
	if len(cpuPercent) == 0 {
		return Sample{}, fmt.Errorf("sample cpu: no data")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("sample memory: %w", err)
	}

	usage, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return Sample{}, fmt.Errorf("sample disk %s: %w", s.diskPath, err)
	}

	return Sample{
		CPU:    cpuPercent[0],
		Memory: vm.UsedPercent,
		Disk:   usage.UsedPercent,
	}, nil
}
