// Package progress defines the progress reporting types shared between the
// simulation engine and the presentation layers.
package progress

// ProgressUpdate is a progress notification emitted by a running portfolio
// task and consumed by the orchestrator's reporter.
type ProgressUpdate struct {
	// TaskIndex is the position of the portfolio in the input list.
	TaskIndex int
	// Value is the normalized progress (0.0 to 1.0).
	Value float64
}

// ProgressCallback receives the normalized progress of a single task.
type ProgressCallback func(progress float64)

// ChannelCallback returns a ProgressCallback that forwards updates to ch
// without ever blocking the caller. Updates are dropped when ch is full,
// except the final 1.0 which is always delivered.
func ChannelCallback(ch chan<- ProgressUpdate, index int) ProgressCallback {
	if ch == nil {
		return func(float64) {}
	}
	return func(v float64) {
		update := ProgressUpdate{TaskIndex: index, Value: v}
		if v >= 1.0 {
			ch <- update
			return
		}
		select {
		case ch <- update:
		default:
		}
	}
}
