// Package server exposes the simulator over HTTP: POST /simulate runs the
// orchestrator for a JSON request, GET /health reports liveness and
// GET /metrics serves the Prometheus registry.
package server
