// Package format holds the display helpers shared by the CLI, the TUI and the
// HTTP server: durations, byte sizes, currency amounts and ETA-aware progress
// aggregation.
package format
