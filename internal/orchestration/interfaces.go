package orchestration

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/progress"
	"github.com/agbru/mcsim/internal/simulation"
)

// Status is the outcome of one portfolio task.
type Status int

const (
	// StatusCompleted means the task finished within the budget.
	StatusCompleted Status = iota
	// StatusTimedOut means the task had not finished when the budget expired.
	StatusTimedOut
	// StatusFailed means the task returned an error or panicked.
	StatusFailed
	// StatusCanceled means the caller canceled the run.
	StatusCanceled
)

// String returns the lower-case name used in logs, metrics and JSON.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// SimulationResult is the per-portfolio entry of a Report.
type SimulationResult struct {
	Name   string
	Status Status
	// Result is nil unless Status is StatusCompleted.
	Result *simulation.Result
	// Err explains a non-completed status.
	Err      error
	Duration time.Duration
}

type simulationResultJSON struct {
	Name       string             `json:"name"`
	Status     Status             `json:"status"`
	Result     *simulation.Result `json:"result,omitempty"`
	Error      string             `json:"error,omitempty"`
	DurationMS float64            `json:"duration_ms"`
}

// MarshalJSON renders the error as a string and the duration in milliseconds.
func (r SimulationResult) MarshalJSON() ([]byte, error) {
	out := simulationResultJSON{
		Name:       r.Name,
		Status:     r.Status,
		Result:     r.Result,
		DurationMS: float64(r.Duration) / float64(time.Millisecond),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report is the outcome of a whole run.
type Report struct {
	Results []SimulationResult
	Elapsed time.Duration
	Budget  time.Duration
}

// MarshalJSON renders durations in milliseconds.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Results   []SimulationResult `json:"results"`
		ElapsedMS float64            `json:"elapsed_ms"`
		BudgetMS  float64            `json:"budget_ms"`
		Outcome   string             `json:"outcome"`
	}{
		Results:   r.Results,
		ElapsedMS: float64(r.Elapsed) / float64(time.Millisecond),
		BudgetMS:  float64(r.Budget) / float64(time.Millisecond),
		Outcome:   r.Outcome(),
	})
}

// Counts returns the number of results per status.
func (r Report) Counts() (completed, timedOut, failed, canceled int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusCompleted:
			completed++
		case StatusTimedOut:
			timedOut++
		case StatusFailed:
			failed++
		case StatusCanceled:
			canceled++
		}
	}
	return completed, timedOut, failed, canceled
}

// ExitCode maps the report to a process exit code. Cancellation wins over
// failure, failure over timeout.
func (r Report) ExitCode() int {
	_, timedOut, failed, canceled := r.Counts()
	switch {
	case canceled > 0:
		return apperrors.ExitErrorCanceled
	case failed > 0:
		return apperrors.ExitErrorGeneric
	case timedOut > 0:
		return apperrors.ExitErrorTimeout
	}
	return apperrors.ExitSuccess
}

// Outcome summarizes the report in one word: success, partial, failure or
// canceled.
func (r Report) Outcome() string {
	switch r.ExitCode() {
	case apperrors.ExitErrorCanceled:
		return "canceled"
	case apperrors.ExitErrorGeneric:
		return "failure"
	case apperrors.ExitErrorTimeout:
		return "partial"
	}
	return "success"
}

// ProgressReporter displays task progress while a run is in flight.
// DisplayProgress runs in its own goroutine, must drain progressChan until
// it is closed and must call wg.Done before returning.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numTasks int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numTasks int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numTasks int, out io.Writer) {
	f(wg, progressChan, numTasks, out)
}

// NullProgressReporter drains the channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains progressChan.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders a finished report.
type ResultPresenter interface {
	PresentReport(report Report, out io.Writer)
}

// ErrorHandler maps an error to an exit code, printing whatever the user
// needs to see.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
