package simulation

import (
	"context"
	"slices"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/progress"
)

// DefaultProgressStride is the number of trajectories between two progress
// reports.
const DefaultProgressStride = 500

const maxPrealloc = 1 << 16

// Task simulates every trajectory of one portfolio and summarizes them.
type Task struct {
	Portfolio Portfolio
	Params    Parameters
	// Source is owned by the task. A nil Source gets a fresh NormalSource.
	Source ReturnSource
	// Progress, if set, is called every ProgressStride trajectories and once
	// with 1.0 on success.
	Progress       progress.ProgressCallback
	ProgressStride int
	// WithStats adds descriptive statistics to the Result.
	WithStats bool
}

// Run generates Params.Iterations outcomes and returns their summary tagged
// with the portfolio name.
//
// The context is checked between trajectories and, for long horizons, every
// yearCheckStride years within one. Errors are wrapped in an
// apperrors.SimulationError naming the portfolio.
func (t Task) Run(ctx context.Context) (Result, error) {
	if err := t.Portfolio.Validate(); err != nil {
		return Result{}, t.fail(err)
	}
	if err := t.Params.Validate(); err != nil {
		return Result{}, t.fail(err)
	}

	src := t.Source
	if src == nil {
		src = NewNormalSource()
	}
	stride := t.ProgressStride
	if stride <= 0 {
		stride = DefaultProgressStride
	}
	report := t.Progress
	if report == nil {
		report = func(float64) {}
	}

	n := t.Params.Iterations
	// Grown on demand so that a task canceled early never holds the full
	// sample.
	outcomes := make([]float64, 0, min(n, maxPrealloc))
	var nominalSum float64
	done := ctx.Done()
	for i := range n {
		select {
		case <-done:
			return Result{}, t.fail(ctx.Err())
		default:
		}
		traj, err := simulateTrajectoryContext(ctx, src, t.Portfolio, t.Params)
		if err != nil {
			return Result{}, t.fail(err)
		}
		outcomes = append(outcomes, traj.Real)
		nominalSum += traj.NominalMultiplier
		if (i+1)%stride == 0 && i+1 < n {
			report(float64(i+1) / float64(n))
		}
	}

	slices.Sort(outcomes)
	res, err := summarizeSorted(outcomes)
	if err != nil {
		return Result{}, t.fail(err)
	}
	res.Name = t.Portfolio.Name
	if t.WithStats {
		stats, err := Describe(outcomes)
		if err != nil {
			return Result{}, t.fail(err)
		}
		stats.MeanNominalMultiplier = nominalSum / float64(n)
		res.Stats = &stats
	}
	report(1.0)
	return res, nil
}

func (t Task) fail(err error) error {
	return apperrors.SimulationError{Portfolio: t.Portfolio.Name, Cause: err}
}
