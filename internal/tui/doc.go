// Package tui implements the --tui dashboard: live per-portfolio progress,
// host and runtime statistics, and the result table once the run is over.
// 'r' reruns the simulation with fresh random draws, 'q' quits.
package tui
