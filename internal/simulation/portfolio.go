package simulation

import (
	"math"

	apperrors "github.com/agbru/mcsim/internal/errors"
)

// Default simulation parameters.
const (
	DefaultStartingAmount = 100000.0
	DefaultHorizonYears   = 20
	DefaultInflationRate  = 3.5
	DefaultIterations     = 10000
)

// Portfolio describes an investment mix by its expected annual return and
// its volatility, both in percent.
type Portfolio struct {
	Name       string  `json:"name" yaml:"name"`
	MeanReturn float64 `json:"mean_return" yaml:"mean_return"`
	Risk       float64 `json:"risk" yaml:"risk"`
}

// Validate rejects portfolios the simulator cannot meaningfully draw from.
func (p Portfolio) Validate() error {
	switch {
	case p.Name == "":
		return apperrors.ValidationError{Field: "name", Message: "portfolio name must not be empty"}
	case math.IsNaN(p.MeanReturn) || math.IsInf(p.MeanReturn, 0):
		return apperrors.ValidationError{Field: "mean_return", Message: "must be a finite number"}
	case math.IsNaN(p.Risk) || math.IsInf(p.Risk, 0):
		return apperrors.ValidationError{Field: "risk", Message: "must be a finite number"}
	}
	return nil
}

// Parameters holds the run-wide simulation settings. It is read-only once
// built and passed by value to every task.
type Parameters struct {
	StartingAmount float64 `json:"starting_amount" yaml:"starting_amount"`
	HorizonYears   int     `json:"horizon_years" yaml:"horizon_years"`
	InflationRate  float64 `json:"inflation_rate" yaml:"inflation_rate"`
	Iterations     int     `json:"iterations" yaml:"iterations"`
}

// DefaultParameters returns the stock settings: 100,000 invested for 20
// years at 3.5% inflation, 10,000 trajectories per portfolio.
func DefaultParameters() Parameters {
	return Parameters{
		StartingAmount: DefaultStartingAmount,
		HorizonYears:   DefaultHorizonYears,
		InflationRate:  DefaultInflationRate,
		Iterations:     DefaultIterations,
	}
}

// Validate checks the parameter invariants.
func (p Parameters) Validate() error {
	switch {
	case p.Iterations < 1:
		return apperrors.ValidationError{Field: "iterations", Message: "must be at least 1"}
	case p.HorizonYears < 0:
		return apperrors.ValidationError{Field: "years", Message: "must not be negative"}
	case math.IsNaN(p.StartingAmount) || math.IsInf(p.StartingAmount, 0):
		return apperrors.ValidationError{Field: "amount", Message: "must be a finite number"}
	case math.IsNaN(p.InflationRate) || math.IsInf(p.InflationRate, 0) || p.InflationRate <= -100:
		return apperrors.ValidationError{Field: "inflation", Message: "must be a finite number greater than -100"}
	}
	return nil
}

// Result summarizes the distribution of ending values for one portfolio.
type Result struct {
	Name string `json:"name"`
	// Median is the 50th percentile.
	Median float64 `json:"median"`
	// BestCase is the 90th percentile.
	BestCase float64 `json:"best_case"`
	// WorstCase is the 10th percentile.
	WorstCase float64 `json:"worst_case"`
	// Stats is only populated when descriptive statistics were requested.
	Stats *Stats `json:"stats,omitempty"`
}
