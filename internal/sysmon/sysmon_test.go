package sysmon

import (
	"errors"
	"math"
	"testing"

	"github.com/shirou/gopsutil/v4/mem"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	t.Parallel()
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()
	failure := errors.New("unavailable")
	tests := []struct {
		name   string
		cpu    []float64
		cpuErr error
		vm     *mem.VirtualMemoryStat
		vmErr  error
		want   Stats
	}{
		{
			name: "normal reading",
			cpu:  []float64{42.5},
			vm:   &mem.VirtualMemoryStat{UsedPercent: 61, Used: 6 << 30, Total: 10 << 30},
			want: Stats{CPUPercent: 42.5, MemPercent: 61, MemUsedBytes: 6 << 30, MemTotalBytes: 10 << 30},
		},
		{
			name: "out of range values are clamped",
			cpu:  []float64{130},
			vm:   &mem.VirtualMemoryStat{UsedPercent: math.NaN()},
			want: Stats{CPUPercent: 100},
		},
		{
			name:   "errors leave zero values",
			cpuErr: failure,
			vmErr:  failure,
		},
		{
			name: "empty cpu reading",
			cpu:  []float64{},
			vm:   &mem.VirtualMemoryStat{UsedPercent: -3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &Sampler{
				cpuPercent:    func() ([]float64, error) { return tt.cpu, tt.cpuErr },
				virtualMemory: func() (*mem.VirtualMemoryStat, error) { return tt.vm, tt.vmErr },
			}
			if got := s.Sample(); got != tt.want {
				t.Errorf("Sample() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
