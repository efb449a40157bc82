// Package ui holds the color themes shared by the CLI presenter and the TUI
// dashboard. ANSI escapes are looked up through the active theme so that
// --no-color and NO_COLOR switch every writer at once.
package ui
