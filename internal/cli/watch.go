package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/prayer-clock/internal/logging"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/tui"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live countdown to the next prayer",
		Long:  "Open a full-screen view that refreshes every second and fetches the new\nschedule after midnight. Press t to switch between dark and light, q to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}
}

func runWatch(cmd *cobra.Command, opts *options) error {
	// The screen belongs to the TUI; log lines would tear it.
	opts.log = logging.New(io.Discard, opts.cfg.LogLevel)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := opts.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	loop := s.NewLoop()
	ticks, unsubscribe := tui.Feed(loop)
	defer unsubscribe()

	prefsStore := opts.prefs()
	themes := make(chan bool, 1)

	var g errgroup.Group
	g.Go(func() error {
		return s.Fetcher.RunDaily(ctx)
	})
	g.Go(func() error {
		err := prefsStore.Watch(ctx, func(dark bool) { sendLatest(themes, dark) })
		if err != nil {
			s.Log.Warn().Err(err).Msg("theme changes will not be picked up")
		}
		return nil
	})

	if err := loop.Start(ctx); err != nil {
		cancel()
		g.Wait()
		return err
	}

	model := tui.NewModel(tui.Options{
		Store:  s.Store,
		Ticks:  ticks,
		Themes: themes,
		Prefs:  prefsStore,
		Dark:   prefsStore.DarkTheme(),
		Layout: prayer.LayoutFor(s.Config.TimeFormat),
	})
	_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout())).Run()

	cancel()
	loop.Stop()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// sendLatest replaces any unread value in ch with v. It never blocks, so
// overlapping senders cannot stall once the reader is gone.
func sendLatest[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
