package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/prayer-clock/internal/cache"
	"github.com/smokyabdulrahman/prayer-clock/internal/mqttpub"
	"github.com/smokyabdulrahman/prayer-clock/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live schedule over HTTP and MQTT",
		Long: `Run the refresh loop and publish every tick:
  GET /api/state   current snapshot as JSON
  GET /api/events  server-sent events, one "tick" per second
  GET /healthz     schedule and dependency health
With mqtt_broker configured, each tick is also published, retained, to mqtt_topic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.cfg.ListenAddr = addr
			}
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := opts.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	loop := s.NewLoop()

	checks := map[string]server.Checker{}
	if r, ok := s.Cache.(*cache.Redis); ok {
		checks["redis"] = server.CheckerFunc(r.Ping)
	}

	if broker := s.Config.MQTTBroker; broker != "" {
		pub, err := mqttpub.Connect(broker, mqttClientID(), s.Config.MQTTTopic, s.Log)
		if err != nil {
			return err
		}
		defer pub.Close()
		unsubscribe := loop.Subscribe(pub.Observer(s.Store))
		defer unsubscribe()
	}

	srv := server.New(s.Config.ListenAddr, s.Log, loop, checks)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Fetcher.RunDaily(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		loop.Stop()
		s.Log.Info().Msg("shutting down")
		return srv.Shutdown(context.Background())
	})

	if err := loop.Start(gctx); err != nil {
		stop()
		g.Wait()
		return err
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func mqttClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "prayer-clock-" + host
}
