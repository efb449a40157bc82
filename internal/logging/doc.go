// Package logging provides the logging interface used across the simulator.
// Components depend on Logger; the binary wires a zerolog-backed adapter and
// tests can substitute the standard library adapter or a no-op logger.
package logging
