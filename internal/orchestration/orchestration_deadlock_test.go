package orchestration

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/mcsim/internal/progress"
	"github.com/agbru/mcsim/internal/simulation"
)

// slowProgressReporter drains the channel but takes its time on each update.
type slowProgressReporter struct{ delay time.Duration }

func (r slowProgressReporter) DisplayProgress(wg *sync.WaitGroup, ch <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range ch {
		time.Sleep(r.delay)
	}
}

// TestOrchestrationNoDeadlock_MixedBehaviors verifies that ExecuteSimulations
// returns under combinations of fast, slow, panicking and progress-heavy
// tasks.
func TestOrchestrationNoDeadlock_MixedBehaviors(t *testing.T) {
	t.Parallel()
	portfolio := func(name string) simulation.Portfolio {
		return simulation.Portfolio{Name: name, MeanReturn: 5, Risk: 5}
	}
	testCases := []struct {
		name       string
		portfolios []simulation.Portfolio
		sources    map[int]simulation.ReturnSource
		opts       Options
		reporter   ProgressReporter
	}{
		{
			name:       "all_instant",
			portfolios: []simulation.Portfolio{portfolio("a"), portfolio("b"), portfolio("c")},
			opts:       Options{Budget: 5 * time.Second},
			reporter:   NullProgressReporter{},
		},
		{
			name:       "mixed_instant_and_slow",
			portfolios: []simulation.Portfolio{portfolio("fast"), portfolio("slow")},
			sources:    map[int]simulation.ReturnSource{1: slowSource{delay: time.Millisecond}},
			opts:       Options{Budget: 200 * time.Millisecond},
			reporter:   NullProgressReporter{},
		},
		{
			name:       "mixed_with_panics",
			portfolios: []simulation.Portfolio{portfolio("ok"), portfolio("boom")},
			sources:    map[int]simulation.ReturnSource{1: panicSource{}},
			opts:       Options{Budget: 5 * time.Second},
			reporter:   NullProgressReporter{},
		},
		{
			name:       "progress_flood_slow_reporter",
			portfolios: []simulation.Portfolio{portfolio("flood1"), portfolio("flood2")},
			opts:       Options{Budget: 5 * time.Second, ProgressStride: 1},
			reporter:   slowProgressReporter{delay: 100 * time.Microsecond},
		},
		{
			name:       "bounded_pool_with_timeout",
			portfolios: []simulation.Portfolio{portfolio("s1"), portfolio("s2"), portfolio("s3"), portfolio("s4")},
			sources: map[int]simulation.ReturnSource{
				0: slowSource{delay: time.Millisecond},
				1: slowSource{delay: time.Millisecond},
				2: slowSource{delay: time.Millisecond},
				3: slowSource{delay: time.Millisecond},
			},
			opts:     Options{Budget: 50 * time.Millisecond, Workers: 1},
			reporter: NullProgressReporter{},
		},
		{
			name:     "no_portfolios",
			opts:     Options{Budget: time.Second},
			reporter: NullProgressReporter{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			opts := tc.opts
			opts.NewSource = sourcesByIndex(tc.sources)
			params := simulation.Parameters{StartingAmount: 1000, HorizonYears: 10, InflationRate: 2, Iterations: 2000}

			done := make(chan Report, 1)
			go func() {
				done <- ExecuteSimulations(context.Background(), tc.portfolios, params, opts, tc.reporter, io.Discard)
			}()

			select {
			case report := <-done:
				if len(report.Results) != len(tc.portfolios) {
					t.Errorf("got %d results, want %d", len(report.Results), len(tc.portfolios))
				}
			case <-time.After(10 * time.Second):
				t.Fatal("DEADLOCK: ExecuteSimulations did not complete within timeout")
			}
		})
	}
}

// TestOrchestrationNoDeadlock_ContextCancellation verifies that canceling
// the parent context mid-run releases every task.
func TestOrchestrationNoDeadlock_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	portfolios := []simulation.Portfolio{{Name: "slow1", Risk: 1}, {Name: "slow2", Risk: 1}}
	opts := Options{
		Budget: time.Minute,
		NewSource: func(int, simulation.Portfolio) simulation.ReturnSource {
			return slowSource{delay: time.Millisecond}
		},
	}
	params := simulation.Parameters{StartingAmount: 1, HorizonYears: 10, Iterations: 100000}

	done := make(chan Report, 1)
	go func() {
		done <- ExecuteSimulations(ctx, portfolios, params, opts, NullProgressReporter{}, io.Discard)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case report := <-done:
		for _, r := range report.Results {
			if r.Status != StatusCanceled {
				t.Errorf("%s: status %v, want canceled", r.Name, r.Status)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DEADLOCK after context cancellation")
	}
}
