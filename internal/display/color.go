// Package display styles one-shot terminal output with raw ANSI codes.
//
// Styling follows the stored dark/light theme. It honours NO_COLOR
// (https://no-color.org/) and is off when stdout is not a terminal.
package display

import "os"

const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	fgGray  = "\033[90m"
)

// Palette maps the roles used by the renderers to escape sequences.
type Palette struct {
	Accent  string // next prayer
	Current string // prayer in effect
	Muted   string // secondary text such as sunrise/sunset
	Warn    string // errors and stale data
}

var (
	darkPalette = Palette{
		Accent:  bold + cyan,
		Current: green,
		Muted:   fgGray,
		Warn:    yellow,
	}
	lightPalette = Palette{
		Accent:  bold + blue,
		Current: magenta,
		Muted:   dim,
		Warn:    red,
	}
)

var (
	enabled = shouldEnable()
	dark    = true
)

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// SetEnabled overrides the auto-detected color state (--json, tests).
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return enabled
}

// SetTheme selects the dark or light palette.
func SetTheme(isDark bool) {
	dark = isDark
}

// Theme returns the active palette.
func Theme() Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

func wrap(code, text string) string {
	if !enabled || code == "" {
		return text
	}
	return code + text + reset
}

// Bold returns text rendered in bold.
func Bold(text string) string {
	return wrap(bold, text)
}

// Dim returns text rendered faint.
func Dim(text string) string {
	return wrap(dim, text)
}

// Accent highlights the next prayer.
func Accent(text string) string {
	return wrap(Theme().Accent, text)
}

// Current highlights the prayer in effect.
func Current(text string) string {
	return wrap(Theme().Current, text)
}

// Muted renders secondary information.
func Muted(text string) string {
	return wrap(Theme().Muted, text)
}

// Warn renders errors and warnings.
func Warn(text string) string {
	return wrap(Theme().Warn, text)
}
