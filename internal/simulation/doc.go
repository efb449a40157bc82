// Package simulation implements the Monte Carlo engine: per-task random
// return sources, inflation-adjusted trajectory compounding, the percentile
// summarizer and the task that ties them together for one portfolio.
//
// Everything in this package is single-goroutine. Concurrency across
// portfolios is the orchestration package's concern; a Task owns its
// ReturnSource and shares only read-only values with its siblings.
package simulation
