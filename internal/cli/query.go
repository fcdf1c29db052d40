package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

func newQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Print today's time for one prayer.\n\nValid prayer names: " + strings.Join(prayerNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}
}

func prayerNames() []string {
	out := make([]string, len(prayer.Order))
	for i, n := range prayer.Order {
		out[i] = n.Title()
	}
	return out
}

type queryJSON struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Raw    string `json:"raw"`
	Date   string `json:"date"`
}

func runQuery(cmd *cobra.Command, opts *options, arg string) error {
	name, err := prayer.ParseName(arg)
	if err != nil {
		return fmt.Errorf("unknown prayer %q; valid names: %s", arg, strings.Join(prayerNames(), ", "))
	}

	s, err := opts.openSession(cmd.Context(), true)
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

	raw := times.Get(name)
	minutes, err := prayer.ParseClock(raw)
	if err != nil {
		return fmt.Errorf("no usable time for %s: %w", name.Title(), err)
	}

	now := s.Now()
	timeStr := prayer.Instant(now, minutes*60).Format(prayer.LayoutFor(s.Config.TimeFormat))
	out := cmd.OutOrStdout()

	if opts.json {
		data, err := json.MarshalIndent(queryJSON{
			Prayer: name.String(),
			Time:   timeStr,
			Raw:    raw,
			Date:   now.Format("2006-01-02"),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s %s\n", name.Title(), timeStr)
	return nil
}
