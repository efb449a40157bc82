package tui

import (
	"time"

	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/sysmon"
)

// Messages carrying a Generation belong to one run; the model ignores them
// once a rerun has started.

// ProgressMsg is one aggregated progress update.
type ProgressMsg struct {
	TaskIndex       int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	Generation      uint64
}

// ProgressDoneMsg signals that the progress channel of a run was closed.
type ProgressDoneMsg struct {
	Generation uint64
}

// RunCompleteMsg carries the report of a finished run.
type RunCompleteMsg struct {
	Report     orchestration.Report
	Generation uint64
}

// TickMsg drives the periodic sampling.
type TickMsg time.Time

// SysStatsMsg is a host statistics sample.
type SysStatsMsg sysmon.Stats

// MemStatsMsg is a Go runtime sample.
type MemStatsMsg struct {
	Memory       metrics.MemorySnapshot
	NumGoroutine int
}

// ParentCanceledMsg signals that the context the dashboard was started
// with is done, typically after SIGINT.
type ParentCanceledMsg struct {
	Err error
}
