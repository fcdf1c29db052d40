package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// Clock layouts for rendering prayer instants.
const (
	Layout12h = "3:04 PM"
	Layout24h = "15:04"
)

// LayoutFor maps a "12h"/"24h" setting to a time layout.
func LayoutFor(timeFormat string) string {
	if timeFormat == "24h" {
		return Layout24h
	}
	return Layout12h
}

// FormatCountdown renders a non-negative number of seconds as
// "2h 05m 10s", "5m 03s" or "7s". It panics on negative input.
func FormatCountdown(totalSeconds int) string {
	if totalSeconds < 0 {
		panic(fmt.Sprintf("prayer: negative countdown %d", totalSeconds))
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Upcoming is the next prayer anchored to a wall-clock instant.
type Upcoming struct {
	Name      Name
	At        time.Time
	Remaining int
}

// UpcomingFrom anchors a resolved state to the day of now.
func UpcomingFrom(st State, now time.Time) Upcoming {
	return Upcoming{
		Name:      st.Next,
		At:        Instant(now, st.NextAt),
		Remaining: st.Remaining,
	}
}

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Display name, e.g. "Asr"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Formatted prayer time, e.g. "15:02" or "3:02 PM"
	Remaining string // Countdown, e.g. "2h 15m 00s"
	Hours     int
	Minutes   int
	Seconds   int
}

// FormatOutput formats the next prayer according to the chosen mode.
// layout should be Layout12h or Layout24h.
//
// If mode contains "{{", it is treated as a custom Go template string.
// Available template fields: .Name, .ShortName, .Time, .Remaining, .Hours,
// .Minutes, .Seconds
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m 00s"
func FormatOutput(u Upcoming, mode string, layout string) string {
	remaining := FormatCountdown(u.Remaining)
	timeStr := u.At.Format(layout)
	name := u.Name.Title()
	short := u.Name.Short()

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      name,
			ShortName: short,
			Time:      timeStr,
			Remaining: remaining,
			Hours:     u.Remaining / 3600,
			Minutes:   (u.Remaining % 3600) / 60,
			Seconds:   u.Remaining % 60,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndTime:
		return fmt.Sprintf("%s %s", name, timeStr)
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", name, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", name, timeStr, remaining)
	default:
		return fmt.Sprintf("%s %s", name, timeStr)
	}
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
