package metrics

import "runtime"

// MemorySnapshot is a point-in-time reading of the Go runtime's memory
// statistics.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes of live heap objects
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector returns a MemoryCollector.
func NewMemoryCollector() *MemoryCollector { return &MemoryCollector{} }

// Snapshot reads the current statistics. It briefly stops the world.
func (*MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Delta returns the allocation and GC activity between two snapshots.
// HeapAlloc is taken from after, the remaining counters are differences.
func (before MemorySnapshot) Delta(after MemorySnapshot) MemorySnapshot {
	d := MemorySnapshot{HeapAlloc: after.HeapAlloc, Sys: after.Sys}
	if after.TotalAlloc >= before.TotalAlloc {
		d.TotalAlloc = after.TotalAlloc - before.TotalAlloc
	}
	if after.NumGC >= before.NumGC {
		d.NumGC = after.NumGC - before.NumGC
	}
	if after.PauseTotalNs >= before.PauseTotalNs {
		d.PauseTotalNs = after.PauseTotalNs - before.PauseTotalNs
	}
	return d
}
