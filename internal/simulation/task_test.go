package simulation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	apperrors "github.com/agbru/mcsim/internal/errors"
)

func TestTaskRun(t *testing.T) {
	t.Parallel()
	task := Task{
		Portfolio: Portfolio{Name: "Very Conservative", MeanReturn: 6.189, Risk: 6.3438},
		Params:    Parameters{StartingAmount: 100000, HorizonYears: 20, InflationRate: 3.5, Iterations: 2000},
		Source:    NewSeededSource(3, 4),
	}
	res, err := task.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Name != "Very Conservative" {
		t.Errorf("Name = %q", res.Name)
	}
	if !(res.WorstCase <= res.Median && res.Median <= res.BestCase) {
		t.Errorf("percentiles out of order: %+v", res)
	}
	if res.Stats != nil {
		t.Error("Stats should be nil unless requested")
	}
}

func TestTaskRunNegativeRisk(t *testing.T) {
	t.Parallel()
	task := Task{
		Portfolio: Portfolio{Name: "Mirrored", MeanReturn: 6, Risk: -5},
		Params:    Parameters{StartingAmount: 1000, HorizonYears: 10, InflationRate: 2, Iterations: 500},
		Source:    NewSeededSource(7, 8),
	}
	res, err := task.Run(context.Background())
	if err != nil {
		t.Fatalf("negative risk should be accepted, got %v", err)
	}
	if !(res.WorstCase < res.Median && res.Median < res.BestCase) {
		t.Errorf("negative risk should still spread the outcomes: %+v", res)
	}
}

func TestTaskRunZeroRisk(t *testing.T) {
	t.Parallel()
	params := Parameters{StartingAmount: 1000, HorizonYears: 10, InflationRate: 2, Iterations: 25}
	task := Task{
		Portfolio: Portfolio{Name: "Fixed", MeanReturn: 5, Risk: 0},
		Params:    params,
		WithStats: true,
	}
	res, err := task.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Median != res.BestCase || res.Median != res.WorstCase {
		t.Errorf("zero risk should collapse the distribution: %+v", res)
	}
	if res.Stats == nil {
		t.Fatal("Stats should be populated")
	}
	if res.Stats.StdDev > 1e-9 || res.Stats.Min != res.Stats.Max {
		t.Errorf("unexpected spread: %+v", *res.Stats)
	}
	if want := math.Pow(1.05, 10); math.Abs(res.Stats.MeanNominalMultiplier-want) > 1e-9 {
		t.Errorf("MeanNominalMultiplier = %v, want %v", res.Stats.MeanNominalMultiplier, want)
	}
}

func TestTaskRunProgress(t *testing.T) {
	t.Parallel()
	var (
		mu    sync.Mutex
		calls []float64
	)
	task := Task{
		Portfolio:      Portfolio{Name: "p", MeanReturn: 5, Risk: 5},
		Params:         Parameters{StartingAmount: 1, HorizonYears: 1, Iterations: 1000},
		ProgressStride: 100,
		Progress: func(v float64) {
			mu.Lock()
			calls = append(calls, v)
			mu.Unlock()
		},
	}
	if _, err := task.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(calls) != 10 {
		t.Fatalf("got %d progress calls, want 10: %v", len(calls), calls)
	}
	for i := 1; i < len(calls); i++ {
		if calls[i] <= calls[i-1] {
			t.Errorf("progress not increasing at %d: %v", i, calls)
		}
	}
	if calls[len(calls)-1] != 1.0 {
		t.Errorf("last progress = %v, want 1.0", calls[len(calls)-1])
	}
}

func TestTaskRunErrors(t *testing.T) {
	t.Parallel()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		task    Task
		ctx     context.Context
		wantIs  error
		wantVal bool
	}{
		{
			name:   "canceled context",
			task:   Task{Portfolio: Portfolio{Name: "c", Risk: 1}, Params: DefaultParameters()},
			ctx:    canceled,
			wantIs: context.Canceled,
		},
		{
			name:    "zero iterations",
			task:    Task{Portfolio: Portfolio{Name: "z", Risk: 1}, Params: Parameters{Iterations: 0}},
			ctx:     context.Background(),
			wantVal: true,
		},
		{
			name:    "NaN risk",
			task:    Task{Portfolio: Portfolio{Name: "n", Risk: math.NaN()}, Params: DefaultParameters()},
			ctx:     context.Background(),
			wantVal: true,
		},
		{
			name:    "negative horizon",
			task:    Task{Portfolio: Portfolio{Name: "h", Risk: 1}, Params: Parameters{HorizonYears: -1, Iterations: 1}},
			ctx:     context.Background(),
			wantVal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.task.Run(tt.ctx)
			if err == nil {
				t.Fatal("expected an error")
			}
			var simErr apperrors.SimulationError
			if !errors.As(err, &simErr) || simErr.Portfolio != tt.task.Portfolio.Name {
				t.Errorf("expected SimulationError for %q, got %v", tt.task.Portfolio.Name, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected %v in chain, got %v", tt.wantIs, err)
			}
			if tt.wantVal {
				var valErr apperrors.ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError in chain, got %v", err)
				}
			}
		})
	}
}

func TestParametersValidate(t *testing.T) {
	t.Parallel()
	if err := DefaultParameters().Validate(); err != nil {
		t.Errorf("default parameters should be valid: %v", err)
	}
	bad := DefaultParameters()
	bad.InflationRate = -100
	if err := bad.Validate(); err == nil {
		t.Error("inflation of -100% should be rejected")
	}
	bad = DefaultParameters()
	bad.StartingAmount = math.Inf(1)
	if err := bad.Validate(); err == nil {
		t.Error("infinite starting amount should be rejected")
	}
}

func BenchmarkTaskRun(b *testing.B) {
	task := Task{
		Portfolio: Portfolio{Name: "Aggressive", MeanReturn: 9.4324, Risk: 15.675},
		Params:    DefaultParameters(),
		Source:    NewSeededSource(1, 1),
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := task.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

func TestSimulateTrajectoryContextMatchesSimulateTrajectory(t *testing.T) {
	t.Parallel()
	p := Portfolio{Name: "Aggressive", MeanReturn: 9.4324, Risk: 15.675}
	params := Parameters{StartingAmount: 1, HorizonYears: 3*yearCheckStride + 17, InflationRate: 3.5, Iterations: 1}

	want := SimulateTrajectory(NewSeededSource(11, 12), p, params)
	got, err := simulateTrajectoryContext(context.Background(), NewSeededSource(11, 12), p, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("chunked trajectory = %+v, want %+v", got, want)
	}
}

func TestTaskRunLongHorizonObservesDeadline(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	task := Task{
		Portfolio: Portfolio{Name: "Endless", MeanReturn: 5, Risk: 10},
		Params:    Parameters{StartingAmount: 1, HorizonYears: 300_000_000, Iterations: 1},
	}

	start := time.Now()
	_, err := task.Run(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Run took %s after a 10ms deadline", elapsed)
	}
}
