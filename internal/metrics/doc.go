// Package metrics exposes run and task metrics through a private Prometheus
// registry, plus runtime memory snapshots for verbose output.
package metrics
