// Package sysmon samples host CPU and memory usage for the dashboard header.
package sysmon

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is one host-wide reading. Percentages are in [0, 100].
type Stats struct {
	CPUPercent    float64
	MemPercent    float64
	MemUsedBytes  uint64
	MemTotalBytes uint64
}

// Sampler reads host statistics through gopsutil. The function fields are
// swapped in tests.
type Sampler struct {
	cpuPercent    func() ([]float64, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
}

// NewSampler returns a Sampler backed by gopsutil. CPU usage is measured
// since the previous call (interval 0), so the first reading may be zero.
func NewSampler() *Sampler {
	return &Sampler{
		cpuPercent:    func() ([]float64, error) { return cpu.Percent(0, false) },
		virtualMemory: mem.VirtualMemory,
	}
}

// Sample reads the current statistics. A reading that fails is left at
// zero.
func (s *Sampler) Sample() Stats {
	var st Stats
	if pcts, err := s.cpuPercent(); err == nil && len(pcts) > 0 {
		st.CPUPercent = clampPercent(pcts[0])
	}
	if vm, err := s.virtualMemory(); err == nil && vm != nil {
		st.MemPercent = clampPercent(vm.UsedPercent)
		st.MemUsedBytes = vm.Used
		st.MemTotalBytes = vm.Total
	}
	return st
}

var defaultSampler = NewSampler()

// Sample reads the current statistics with the default sampler.
func Sample() Stats { return defaultSampler.Sample() }

func clampPercent(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
