package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/display"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

func runToday(cmd *cobra.Command, opts *options) error {
	s, err := opts.openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Fetcher.Run(cmd.Context()); err != nil {
		return err
	}

	times, ok := s.Store.Times()
	if !ok {
		return fmt.Errorf("no prayer times available for %q", s.Config.Location)
	}

	now := s.Now()
	tick := schedule.Evaluate(times, now)
	view := schedule.Snapshot(s.Store, &tick)
	layout := prayer.LayoutFor(s.Config.TimeFormat)

	if opts.json {
		return printTodayJSON(cmd.OutOrStdout(), view, tick, now, s.Config.Location, layout)
	}

	printTodayRich(cmd.OutOrStdout(), view, tick, now, s.Config.Location, s.Config.Timezone, layout)
	return nil
}

// formatClock renders a raw prayer string in the chosen layout. Strings
// that do not parse are shown as received.
func formatClock(raw string, now time.Time, layout string) string {
	minutes, err := prayer.ParseClock(raw)
	if err != nil {
		return raw
	}
	return prayer.Instant(now, minutes*60).Format(layout)
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(w io.Writer, view schedule.View, tick schedule.Tick, now time.Time, location, tz, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	header := location
	if tz != "" {
		header += " · " + tz
	}
	fmt.Fprintf(w, "  %s\n", header)
	fmt.Fprintf(w, "  %s\n", now.Format("Mon 02 Jan 2006"))
	fmt.Fprintln(w)

	if tick.Empty {
		fmt.Fprintf(w, "  %s\n\n", display.Warn("No prayer time in today's schedule could be read."))
		return
	}

	tbl := display.NewTable("Prayer", "Time", "")
	for _, n := range prayer.Order {
		raw := view.Times.Get(n)
		note := ""
		switch n {
		case tick.State.Next:
			note = "<- next in " + tick.Countdown
		case tick.State.Current:
			note = "now"
		}
		if _, err := prayer.ParseClock(raw); err != nil {
			note = "unreadable"
		}

		row := tbl.AddRow(n.Title(), formatClock(raw, now, layout), note)
		switch n {
		case tick.State.Next:
			tbl.Style(row, display.Accent)
		case tick.State.Current:
			tbl.Style(row, display.Current)
		}
	}
	fmt.Fprint(w, tbl.Render())

	if view.Sun != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Muted(fmt.Sprintf("Sunrise %s  Sunset %s", view.Sun.Sunrise, view.Sun.Sunset)))
	}
	fmt.Fprintln(w)
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location string            `json:"location"`
	Date     string            `json:"date"`
	Timings  map[string]string `json:"timings"`
	Sun      *prayer.SunTimes  `json:"sun,omitempty"`
	Current  string            `json:"current,omitempty"`
	Next     *todayJSONNext    `json:"next,omitempty"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Seconds   int    `json:"seconds"`
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, view schedule.View, tick schedule.Tick, now time.Time, location, layout string) error {
	timings := make(map[string]string, len(prayer.Order))
	for _, n := range prayer.Order {
		timings[n.String()] = formatClock(view.Times.Get(n), now, layout)
	}

	out := todayJSON{
		Location: location,
		Date:     now.Format("2006-01-02"),
		Timings:  timings,
		Sun:      view.Sun,
	}

	if !tick.Empty {
		out.Current = tick.State.Current.String()
		out.Next = &todayJSONNext{
			Prayer:    tick.State.Next.String(),
			Time:      prayer.Instant(now, tick.State.NextAt).Format(layout),
			Remaining: tick.Countdown,
			Seconds:   tick.State.Remaining,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
