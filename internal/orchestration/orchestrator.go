package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/logging"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/progress"
	"github.com/agbru/mcsim/internal/simulation"
)

// ProgressBufferMultiplier sizes the progress channel per task so that a slow
// reporter rarely causes updates to be dropped.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/mcsim/internal/orchestration"

// Options tunes a run.
type Options struct {
	// Budget is the wall-clock limit for the whole run. Zero or negative
	// means the deadline has already passed.
	Budget time.Duration
	// Workers bounds the number of concurrently running tasks. Zero runs
	// every portfolio on its own goroutine.
	Workers int
	// WithStats adds descriptive statistics to each result.
	WithStats bool
	// ProgressStride overrides simulation.DefaultProgressStride.
	ProgressStride int
	Logger         logging.Logger
	Recorder       *metrics.Recorder
	// NewSource returns the return source of the task at index. Nil means a
	// fresh simulation.NormalSource per task.
	NewSource func(index int, p simulation.Portfolio) simulation.ReturnSource
}

// taskOutcome is what a task delivers through its future.
type taskOutcome struct {
	result   simulation.Result
	err      error
	duration time.Duration
	finished time.Time
}

// ExecuteSimulations simulates every portfolio concurrently and returns one
// entry per portfolio, in input order.
//
// Each task delivers into its own buffered channel. The collector waits on
// those channels under a single deadline derived from opts.Budget; whatever
// has not been delivered by then is reported as StatusTimedOut (or
// StatusCanceled when ctx itself was canceled). Results completed after the
// deadline are discarded. Before returning, the task context is canceled and
// the pool and the progress reporter are drained, so no goroutine outlives
// the call.
func ExecuteSimulations(ctx context.Context, portfolios []simulation.Portfolio, params simulation.Parameters, opts Options, reporter ProgressReporter, out io.Writer) Report {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reporter == nil {
		reporter = NullProgressReporter{}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "ExecuteSimulations", trace.WithAttributes(
		attribute.Int("mcsim.portfolios", len(portfolios)),
		attribute.Int("mcsim.iterations", params.Iterations),
		attribute.Int("mcsim.horizon_years", params.HorizonYears),
		attribute.Int64("mcsim.budget_ms", opts.Budget.Milliseconds()),
	))
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, max(opts.Budget, 0))
	defer cancel()
	deadline, _ := runCtx.Deadline()

	n := len(portfolios)
	futures := make([]chan taskOutcome, n)
	for i := range futures {
		futures[i] = make(chan taskOutcome, 1)
	}
	progressChan := make(chan progress.ProgressUpdate, max(n, 1)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, n, out)

	g := new(errgroup.Group)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	logger.Debug("simulation run started",
		logging.Int("portfolios", n),
		logging.Int("iterations", params.Iterations),
		logging.Duration("budget", opts.Budget),
		logging.Int("workers", opts.Workers))

	// Submission runs apart from collection: with a bounded pool g.Go blocks
	// and must not delay the deadline.
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for i, p := range portfolios {
			if runCtx.Err() != nil {
				return
			}
			task := simulation.Task{
				Portfolio:      p,
				Params:         params,
				Source:         newSource(opts, i, p),
				Progress:       progress.ChannelCallback(progressChan, i),
				ProgressStride: opts.ProgressStride,
				WithStats:      opts.WithStats,
			}
			g.Go(func() error {
				futures[i] <- runTask(runCtx, task, logger)
				return nil
			})
		}
	}()

	results := make([]SimulationResult, n)
	expired := false
	for i, p := range portfolios {
		var (
			o  taskOutcome
			ok bool
		)
		if !expired {
			select {
			case o = <-futures[i]:
				ok = true
			case <-runCtx.Done():
				expired = true
			}
		}
		if !ok {
			// The deadline has passed. Take only what was already delivered.
			select {
			case o = <-futures[i]:
				ok = true
			default:
			}
		}
		results[i] = classify(ctx, p.Name, o, ok, deadline, opts.Budget)
	}

	cancel()
	<-submitted
	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	report := Report{Results: results, Elapsed: time.Since(start), Budget: opts.Budget}
	for _, r := range results {
		trajectories := 0
		if r.Status == StatusCompleted {
			trajectories = params.Iterations
		}
		opts.Recorder.ObserveTask(r.Name, r.Status.String(), r.Duration, trajectories)
		switch r.Status {
		case StatusFailed:
			logger.Error("portfolio simulation failed", r.Err, logging.String("portfolio", r.Name))
		case StatusTimedOut, StatusCanceled:
			logger.Debug("portfolio simulation incomplete",
				logging.String("portfolio", r.Name),
				logging.String("status", r.Status.String()))
		}
	}
	opts.Recorder.ObserveRun(report.Outcome(), report.Elapsed)

	completed, timedOut, failed, canceled := report.Counts()
	span.SetAttributes(
		attribute.Int("mcsim.completed", completed),
		attribute.Int("mcsim.timed_out", timedOut),
		attribute.Int("mcsim.failed", failed),
		attribute.Int("mcsim.canceled", canceled),
	)
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d portfolio(s) failed", failed))
	}
	logger.Debug("simulation run finished",
		logging.String("outcome", report.Outcome()),
		logging.Duration("elapsed", report.Elapsed))
	return report
}

func newSource(opts Options, i int, p simulation.Portfolio) simulation.ReturnSource {
	if opts.NewSource != nil {
		return opts.NewSource(i, p)
	}
	return simulation.NewNormalSource()
}

// runTask executes one task, converting a panic into a SimulationError.
func runTask(ctx context.Context, task simulation.Task, logger logging.Logger) (o taskOutcome) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "SimulatePortfolio", trace.WithAttributes(
		attribute.String("mcsim.portfolio", task.Portfolio.Name),
		attribute.Float64("mcsim.mean_return", task.Portfolio.MeanReturn),
		attribute.Float64("mcsim.risk", task.Portfolio.Risk),
	))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.err = apperrors.SimulationError{Portfolio: task.Portfolio.Name, Cause: fmt.Errorf("panic: %v", r)}
		}
		o.duration = time.Since(start)
		o.finished = time.Now()
		if o.err != nil {
			span.RecordError(o.err)
			span.SetStatus(codes.Error, o.err.Error())
		}
		span.End()
	}()

	logger.Debug("portfolio simulation started", logging.String("portfolio", task.Portfolio.Name))
	o.result, o.err = task.Run(ctx)
	return o
}

// classify turns a task outcome into a report entry. delivered is false when
// the task had not delivered by the deadline.
func classify(parent context.Context, name string, o taskOutcome, delivered bool, deadline time.Time, budget time.Duration) SimulationResult {
	res := SimulationResult{Name: name, Duration: o.duration}
	canceled := errors.Is(parent.Err(), context.Canceled)
	incomplete := func() SimulationResult {
		if canceled {
			res.Status = StatusCanceled
			res.Err = apperrors.SimulationError{Portfolio: name, Cause: context.Canceled}
			return res
		}
		res.Status = StatusTimedOut
		res.Err = apperrors.TimeoutError{Operation: name, Limit: budget}
		return res
	}

	switch {
	case !delivered:
		return incomplete()
	case o.err == nil && o.finished.After(deadline):
		return incomplete()
	case o.err == nil:
		r := o.result
		res.Status = StatusCompleted
		res.Result = &r
		return res
	case apperrors.IsContextError(o.err):
		return incomplete()
	}
	res.Status = StatusFailed
	res.Err = o.err
	return res
}

// AnalyzeResults presents the report and returns the matching exit code.
func AnalyzeResults(report Report, presenter ResultPresenter, out io.Writer) int {
	presenter.PresentReport(report, out)
	return report.ExitCode()
}
