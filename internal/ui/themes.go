package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme maps output roles to ANSI escape sequences. An empty field prints
// nothing, which is how NoColorTheme disables color.
type Theme struct {
	Name string
	// Accent highlights portfolio names and headings.
	Accent string
	// Muted is used for secondary text such as durations.
	Muted string
	// Gain and Loss color amounts above and below the starting amount.
	Gain string
	Loss string
	// Warning marks timed-out tasks and the timeout status line.
	Warning string
	// Info marks configuration values.
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Accent:    "\033[38;5;39m",
		Muted:     "\033[38;5;245m",
		Gain:      "\033[38;5;82m",
		Loss:      "\033[38;5;196m",
		Warning:   "\033[38;5;220m",
		Info:      "\033[38;5;51m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker shades for light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Accent:    "\033[38;5;25m",
		Muted:     "\033[38;5;240m",
		Gain:      "\033[38;5;28m",
		Loss:      "\033[38;5;124m",
		Warning:   "\033[38;5;130m",
		Info:      "\033[38;5;30m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme prints no escape sequences at all.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeEnv selects a theme by name when colors are enabled.
const ThemeEnv = "MCSIM_THEME"

// TUITheme is the lipgloss palette of the dashboard.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Gain    lipgloss.TerminalColor
	Loss    lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the default dashboard palette.
	DarkTUITheme = TUITheme{
		Text:    lipgloss.Color("#D8DEE9"),
		Border:  lipgloss.Color("#3B82F6"),
		Accent:  lipgloss.Color("#38BDF8"),
		Gain:    lipgloss.Color("#4ADE80"),
		Loss:    lipgloss.Color("#F87171"),
		Warning: lipgloss.Color("#FACC15"),
		Dim:     lipgloss.Color("#6B7280"),
	}

	// NoColorTUITheme renders with the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Gain:    lipgloss.NoColor{},
		Loss:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
	}
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// GetCurrentTUITheme returns the dashboard palette matching the active theme.
func GetCurrentTUITheme() TUITheme {
	if GetCurrentTheme().Name == NoColorTheme.Name {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// SetCurrentTheme replaces the active theme; tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name and reports whether the name is known.
// An unknown name leaves the active theme unchanged.
func SetTheme(name string) bool {
	t, ok := themes[name]
	if ok {
		SetCurrentTheme(t)
	}
	return ok
}

// InitTheme picks the theme at startup. noColor and a set NO_COLOR
// variable (https://no-color.org) both disable color, as does TERM=dumb;
// otherwise MCSIM_THEME may name a theme and DarkTheme is the fallback.
func InitTheme(noColor bool) {
	_, noColorEnv := os.LookupEnv("NO_COLOR")
	switch {
	case noColor, noColorEnv, os.Getenv("TERM") == "dumb":
		SetCurrentTheme(NoColorTheme)
	case SetTheme(os.Getenv(ThemeEnv)):
	default:
		SetCurrentTheme(DarkTheme)
	}
}
