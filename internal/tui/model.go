// Package tui is the live countdown screen shown by `prayer-clock watch`.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

// ThemeSaver persists the theme toggle. *prefs.Store implements it.
type ThemeSaver interface {
	SetDarkTheme(dark bool) error
}

type (
	tickMsg    schedule.Tick
	themeMsg   bool
	closedMsg  struct{}
	refreshMsg struct{}
)

// refreshInterval redraws loading and error states, which the loop does
// not publish.
const refreshInterval = time.Second

// Options wires a Model to its data sources.
type Options struct {
	Store  *schedule.Store
	Ticks  <-chan schedule.Tick
	Themes <-chan bool // external theme changes; may be nil
	Prefs  ThemeSaver  // may be nil
	Dark   bool
	Layout string // prayer.Layout12h or prayer.Layout24h
}

// Model renders the latest tick.
type Model struct {
	store  *schedule.Store
	ticks  <-chan schedule.Tick
	themes <-chan bool
	prefs  ThemeSaver
	layout string

	tick    schedule.Tick
	hasTick bool

	dark    bool
	styles  Styles
	width   int
	height  int
	message string
}

func NewModel(opts Options) *Model {
	layout := opts.Layout
	if layout == "" {
		layout = prayer.Layout12h
	}
	return &Model{
		store:  opts.Store,
		ticks:  opts.Ticks,
		themes: opts.Themes,
		prefs:  opts.Prefs,
		layout: layout,
		dark:   opts.Dark,
		styles: ThemeStyles(opts.Dark),
	}
}

// Feed subscribes to l and returns a channel holding only the most recent
// tick, so a slow redraw never stalls the loop.
func Feed(l *schedule.Loop) (<-chan schedule.Tick, func()) {
	ch := make(chan schedule.Tick, 1)
	unsubscribe := l.Subscribe(func(t schedule.Tick) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- t:
		default:
		}
	})
	return ch, unsubscribe
}

// Dark reports the active theme.
func (m *Model) Dark() bool { return m.dark }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitTick(), m.waitTheme(), refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *Model) waitTick() tea.Cmd {
	if m.ticks == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-m.ticks
		if !ok {
			return closedMsg{}
		}
		return tickMsg(t)
	}
}

func (m *Model) waitTheme() tea.Cmd {
	if m.themes == nil {
		return nil
	}
	return func() tea.Msg {
		dark, ok := <-m.themes
		if !ok {
			return nil
		}
		return themeMsg(dark)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		m.tick = schedule.Tick(msg)
		m.hasTick = true
		return m, m.waitTick()

	case themeMsg:
		m.setTheme(bool(msg))
		return m, m.waitTheme()

	case refreshMsg:
		return m, refresh()

	case closedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "t":
		m.setTheme(!m.dark)
		m.message = ""
		if m.prefs != nil {
			if err := m.prefs.SetDarkTheme(m.dark); err != nil {
				m.message = fmt.Sprintf("theme not saved: %v", err)
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) setTheme(dark bool) {
	m.dark = dark
	m.styles = ThemeStyles(dark)
}

func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.styles.Title.Render("Prayer Times"), "")

	switch {
	case m.store != nil && m.store.Err() != nil:
		sections = append(sections, m.styles.Error.Render(m.store.Err().Error()))
	case !m.hasTick && m.store != nil && m.store.Loading():
		sections = append(sections, m.styles.Muted.Render("Loading prayer times..."))
	case !m.hasTick:
		sections = append(sections, m.styles.Muted.Render("Waiting for prayer times..."))
	case m.tick.Empty:
		sections = append(sections, m.styles.Error.Render("No usable prayer times for today"))
	default:
		sections = append(sections, m.viewHeadline(), "", m.viewTable())
	}

	if sun := m.viewSun(); sun != "" {
		sections = append(sections, "", sun)
	}
	sections = append(sections, "", m.viewStatus())

	return m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) viewHeadline() string {
	now := m.styles.Normal.Render("Now: ") + m.styles.Current.Render(m.tick.CurrentDisplay)
	next := m.styles.Normal.Render("Next: ") + m.styles.Next.Render(m.tick.NextDisplay) +
		m.styles.Normal.Render(" in ") + m.styles.Countdown.Render(m.tick.Countdown)
	return lipgloss.JoinVertical(lipgloss.Left, now, next)
}

func (m *Model) viewTable() string {
	times, _ := m.store.Times()
	var rows []string
	for _, n := range prayer.Order {
		raw := times.Get(n)
		line := fmt.Sprintf("%-8s %s", n.Title(), m.formatTime(raw))
		switch n {
		case m.tick.State.Current:
			rows = append(rows, m.styles.Current.Render("▸ "+line))
		case m.tick.State.Next:
			rows = append(rows, m.styles.Next.Render("› "+line))
		default:
			rows = append(rows, m.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(rows, "\n")
}

// formatTime re-renders a raw prayer time in the configured layout, or
// marks it when it cannot be parsed.
func (m *Model) formatTime(raw string) string {
	minutes, err := prayer.ParseClock(raw)
	if err != nil {
		return "--:--"
	}
	return prayer.Instant(m.tick.At, minutes*60).Format(m.layout)
}

func (m *Model) viewSun() string {
	if m.store == nil {
		return ""
	}
	sun, ok := m.store.Sun()
	if !ok {
		return ""
	}
	return m.styles.Muted.Render(fmt.Sprintf("Sunrise %s   Sunset %s", sun.Sunrise, sun.Sunset))
}

func (m *Model) viewStatus() string {
	theme := "dark"
	if !m.dark {
		theme = "light"
	}
	status := m.styles.Help.Render(fmt.Sprintf("t theme (%s) · q quit", theme))
	if m.message != "" {
		status += "  " + m.styles.Message.Render(m.message)
	}
	return status
}
