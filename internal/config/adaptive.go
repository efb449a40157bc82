package config

import "runtime"

// Number of progress reports a task emits over its run when the stride is
// chosen automatically.
const targetProgressReports = 100

// ApplyAdaptiveDefaults resolves the settings left to the machine: the
// AutoWorkers sentinel becomes the CPU count and a zero ProgressStride is
// derived from Iterations.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Workers == AutoWorkers {
		cfg.Workers = EstimateWorkers()
	}
	if cfg.ProgressStride == 0 {
		cfg.ProgressStride = EstimateProgressStride(cfg.Iterations)
	}
	return cfg
}

// EstimateWorkers returns one worker per usable CPU; tasks are CPU-bound.
func EstimateWorkers() int {
	return max(runtime.GOMAXPROCS(0), 1)
}

// EstimateProgressStride spreads roughly targetProgressReports updates over
// iterations trajectories.
func EstimateProgressStride(iterations int) int {
	return max(iterations/targetProgressReports, 1)
}
