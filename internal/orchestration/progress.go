package orchestration

import (
	"time"

	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/progress"
)

// ProgressAggregator folds per-task progress updates into an overall
// average and ETA. The CLI and the TUI share it.
type ProgressAggregator struct {
	state    *format.ProgressWithETA
	numTasks int
}

// NewProgressAggregator returns an aggregator for numTasks tasks, or nil if
// numTasks <= 0.
func NewProgressAggregator(numTasks int) *ProgressAggregator {
	if numTasks <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:    format.NewProgressWithETA(numTasks),
		numTasks: numTasks,
	}
}

// AggregatedProgress is the result of folding one update.
type AggregatedProgress struct {
	TaskIndex       int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update folds one update.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.TaskIndex, update.Value)
	return AggregatedProgress{
		TaskIndex:       update.TaskIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average without updating, for
// periodic refreshes between updates.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumTasks returns the number of tracked tasks.
func (a *ProgressAggregator) NumTasks() int {
	return a.numTasks
}

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
