package simulation

import "context"

// Trajectory is the outcome of compounding one simulated path.
type Trajectory struct {
	// Real is the inflation-adjusted ending amount.
	Real float64
	// NominalMultiplier is the product of the yearly (1 + r/100) factors,
	// before inflation.
	NominalMultiplier float64
}

// SimulateTrajectory compounds params.HorizonYears draws from src.
//
// Each year the nominal return r is deflated as
//
//	realGrowth = (1 + r/100) / (1 + inflation/100) - 1
//
// and the amount is multiplied by 1 + realGrowth. Negative amounts are
// possible when a draw is below -100% and are not clamped.
func SimulateTrajectory(src ReturnSource, p Portfolio, params Parameters) Trajectory {
	traj := Trajectory{Real: params.StartingAmount, NominalMultiplier: 1}
	traj.compound(src, p, 1+params.InflationRate/100, params.HorizonYears)
	return traj
}

// simulateTrajectoryContext is SimulateTrajectory for tasks: ctx is checked
// every yearCheckStride years, so a very long horizon cannot hold a task
// past its deadline. It draws the same sequence as SimulateTrajectory.
func simulateTrajectoryContext(ctx context.Context, src ReturnSource, p Portfolio, params Parameters) (Trajectory, error) {
	traj := Trajectory{Real: params.StartingAmount, NominalMultiplier: 1}
	deflator := 1 + params.InflationRate/100
	for remaining := params.HorizonYears; remaining > 0; {
		if remaining < params.HorizonYears {
			if err := ctx.Err(); err != nil {
				return Trajectory{}, err
			}
		}
		step := min(remaining, yearCheckStride)
		traj.compound(src, p, deflator, step)
		remaining -= step
	}
	return traj, nil
}

// yearCheckStride is the number of simulated years between two context
// checks inside one trajectory.
const yearCheckStride = 1024

// compound applies years draws to t.
func (t *Trajectory) compound(src ReturnSource, p Portfolio, deflator float64, years int) {
	for range years {
		rate := src.NextAnnualReturn(p.MeanReturn, p.Risk)
		growth := 1 + rate/100
		realGrowth := growth/deflator - 1
		t.Real *= 1 + realGrowth
		t.NominalMultiplier *= growth
	}
}

// SimulateOnce returns the inflation-adjusted ending amount of one trajectory.
func SimulateOnce(src ReturnSource, p Portfolio, params Parameters) float64 {
	return SimulateTrajectory(src, p, params).Real
}
