package report

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode selects whether ColorMarker wraps text in ANSI SGR sequences.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ColorMarker wraps strings with ANSI colour codes when enabled, and
// passes them through unchanged otherwise.
type ColorMarker struct {
	enabled bool
	green   func(a ...interface{}) string
	red     func(a ...interface{}) string
	yellow  func(a ...interface{}) string
}

// NewColorMarker resolves mode against stdout's terminal-ness (for "auto")
// and builds a marker accordingly.
func NewColorMarker(mode ColorMode) *ColorMarker {
	enabled := resolveColorMode(mode)
	return &ColorMarker{
		enabled: enabled,
		green:   color.New(color.FgGreen).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
	}
}

func resolveColorMode(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

// Pass wraps s in green when colour is enabled.
func (m *ColorMarker) Pass(s string) string {
	if !m.enabled {
		return s
	}
	return m.green(s)
}

// Fail wraps s in red when colour is enabled.
func (m *ColorMarker) Fail(s string) string {
	if !m.enabled {
		return s
	}
	return m.red(s)
}

// Warn wraps s in yellow when colour is enabled.
func (m *ColorMarker) Warn(s string) string {
	if !m.enabled {
		return s
	}
	return m.yellow(s)
}
