package ui

// The Color* helpers return the escape for a role of the active theme.

func ColorAccent() string    { return GetCurrentTheme().Accent }
func ColorMuted() string     { return GetCurrentTheme().Muted }
func ColorGain() string      { return GetCurrentTheme().Gain }
func ColorLoss() string      { return GetCurrentTheme().Loss }
func ColorWarning() string   { return GetCurrentTheme().Warning }
func ColorInfo() string      { return GetCurrentTheme().Info }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorReset() string     { return GetCurrentTheme().Reset }

// Colorize wraps s in color and a reset, or returns s unchanged when color
// is empty.
func Colorize(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + ColorReset()
}
