package tui

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles for one theme.
type Styles struct {
	Title     lipgloss.Style
	Normal    lipgloss.Style
	Current   lipgloss.Style
	Next      lipgloss.Style
	Countdown lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Message   lipgloss.Style
	Border    lipgloss.Style
}

// ThemeStyles returns the styles for the dark or light theme.
func ThemeStyles(dark bool) Styles {
	if dark {
		return DarkStyles()
	}
	return LightStyles()
}

func DarkStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Underline(true),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Current: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true),
		Next: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),
		Countdown: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("220")).
			Bold(true).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 2),
	}
}

func LightStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("94")).
			Bold(true).
			Underline(true),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")),
		Current: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")).
			Bold(true),
		Next: lipgloss.NewStyle().
			Foreground(lipgloss.Color("25")).
			Bold(true),
		Countdown: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("25")).
			Bold(true).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("94")).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("250")).
			Padding(0, 2),
	}
}
