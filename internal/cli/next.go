package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

func newNextCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nAfter isha the countdown runs to tomorrow's fajr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(cmd, opts, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}')")

	return cmd
}

func runNext(cmd *cobra.Command, opts *options, format string) error {
	// Sunrise/sunset is never shown here, so skip that request.
	s, err := opts.openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Fetcher.Run(cmd.Context()); err != nil {
		return err
	}

	line, err := NextLine(s.Store, s.Now(), format, prayer.LayoutFor(s.Config.TimeFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), line)
	return nil
}

// NextLine formats the upcoming prayer. An unusable schedule is an error
// so that status bars show nothing rather than a wrong prayer.
func NextLine(store *schedule.Store, now time.Time, format, layout string) (string, error) {
	times, ok := store.Times()
	if !ok {
		return "", fmt.Errorf("no prayer times available")
	}
	tick := schedule.Evaluate(times, now)
	if tick.Empty {
		return "", fmt.Errorf("no prayer time in today's schedule could be read")
	}
	return prayer.FormatOutput(prayer.UpcomingFrom(tick.State, now), format, layout), nil
}
