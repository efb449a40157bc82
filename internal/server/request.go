package server

import (
	"fmt"
	"time"

	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/simulation"
)

// SimulateRequest is the body of POST /simulate. Every field is optional.
type SimulateRequest struct {
	// Portfolios replaces the server's portfolios.
	Portfolios []simulation.Portfolio `json:"portfolios"`
	// Only restricts the run to these portfolio names.
	Only       []string           `json:"only"`
	Parameters *RequestParameters `json:"parameters"`
	TimeoutMS  *int64             `json:"timeout_ms"`
	WithStats  bool               `json:"with_stats"`
}

// RequestParameters override the server's default simulation parameters.
type RequestParameters struct {
	StartingAmount *float64 `json:"starting_amount"`
	HorizonYears   *int     `json:"horizon_years"`
	InflationRate  *float64 `json:"inflation_rate"`
	Iterations     *int     `json:"iterations"`
}

type runPlan struct {
	portfolios []simulation.Portfolio
	params     simulation.Parameters
	budget     time.Duration
}

// resolve merges the request with the server defaults and enforces the
// security limits.
func (req SimulateRequest) resolve(cfg Config) (runPlan, error) {
	limits := cfg.Security

	portfolios := cfg.Portfolios
	if len(req.Portfolios) > 0 {
		portfolios = req.Portfolios
	}
	for _, p := range portfolios {
		if err := p.Validate(); err != nil {
			return runPlan{}, err
		}
	}
	portfolios, err := orchestration.SelectPortfolios(portfolios, req.Only)
	if err != nil {
		return runPlan{}, err
	}
	switch {
	case len(portfolios) == 0:
		return runPlan{}, fmt.Errorf("no portfolios to simulate")
	case limits.MaxPortfolios > 0 && len(portfolios) > limits.MaxPortfolios:
		return runPlan{}, fmt.Errorf("at most %d portfolios per request, got %d", limits.MaxPortfolios, len(portfolios))
	}

	params := cfg.Defaults
	if p := req.Parameters; p != nil {
		if p.StartingAmount != nil {
			params.StartingAmount = *p.StartingAmount
		}
		if p.HorizonYears != nil {
			params.HorizonYears = *p.HorizonYears
		}
		if p.InflationRate != nil {
			params.InflationRate = *p.InflationRate
		}
		if p.Iterations != nil {
			params.Iterations = *p.Iterations
		}
	}
	if err := params.Validate(); err != nil {
		return runPlan{}, err
	}
	if limits.MaxIterations > 0 && params.Iterations > limits.MaxIterations {
		return runPlan{}, fmt.Errorf("iterations %d exceeds the limit of %d", params.Iterations, limits.MaxIterations)
	}
	if limits.MaxHorizonYears > 0 && params.HorizonYears > limits.MaxHorizonYears {
		return runPlan{}, fmt.Errorf("horizon_years %d exceeds the limit of %d", params.HorizonYears, limits.MaxHorizonYears)
	}

	budget := cfg.DefaultBudget
	if req.TimeoutMS != nil {
		if *req.TimeoutMS < 0 {
			return runPlan{}, fmt.Errorf("timeout_ms must not be negative")
		}
		if limits.MaxBudget > 0 && *req.TimeoutMS > limits.MaxBudget.Milliseconds() {
			budget = limits.MaxBudget
		} else {
			budget = time.Duration(*req.TimeoutMS) * time.Millisecond
		}
	}
	if limits.MaxBudget > 0 {
		budget = min(budget, limits.MaxBudget)
	}

	return runPlan{portfolios: portfolios, params: params, budget: budget}, nil
}
