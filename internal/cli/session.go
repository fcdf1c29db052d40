package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/cache"
	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

// SessionOptions tunes OpenSession.
type SessionOptions struct {
	NoCache    bool
	AutoLocate bool
	// SkipSun leaves sunrise/sunset out, for callers that only need the
	// next prayer.
	SkipSun bool
}

// Session is everything one command needs to fill and read a schedule.
type Session struct {
	Config  config.Config
	Store   *schedule.Store
	Fetcher *schedule.Fetcher
	Cache   cache.Cache // nil when caching is off or unavailable
	// Clock reports time in the configured timezone. The fetcher and any
	// loop built by NewLoop share it with Now.
	Clock schedule.Clock
	Log   zerolog.Logger
}

// OpenSession builds the API client, cache, store and fetcher for cfg.
// cfg should already have defaults applied.
func OpenSession(ctx context.Context, cfg config.Config, opts SessionOptions, log zerolog.Logger) (*Session, error) {
	s := &Session{Config: cfg, Store: schedule.NewStore(), Log: log}

	if !opts.NoCache {
		c, err := cache.Open(ctx, cfg.CacheURL, cfg.CacheDir)
		if err != nil {
			// Cache init failure is non-fatal; we just skip caching.
			log.Warn().Err(err).Msg("cache disabled")
		} else {
			s.Cache = c
		}
	}

	if opts.AutoLocate {
		if err := s.locate(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.Clock = schedule.ClockIn(wallClock{schedule.RealClock}, zoneFor(s.Config.Timezone, log))

	client := api.NewClient(cfg.TimeoutDuration())
	client.PrayerBaseURL = s.Config.PrayerAPIURL
	client.SunBaseURL = s.Config.SunAPIURL
	client.APIKey = s.Config.APIKey
	client.APIHost = s.Config.APIHost

	var sun schedule.SunSource = client
	if opts.SkipSun {
		sun = nil
	}

	f := schedule.NewFetcher(s.Store, client, sun)
	f.Location = s.Config.Location
	f.Latitude = s.Config.Latitude
	f.Longitude = s.Config.Longitude
	f.Timezone = s.Config.Timezone
	f.Timeout = s.Config.TimeoutDuration()
	f.Cache = s.Cache
	f.Clock = s.Clock
	f.Log = log
	s.Fetcher = f

	return s, nil
}

// locate replaces the configured location with the IP-derived one, using a
// cached detection when there is one.
func (s *Session) locate(ctx context.Context) error {
	var loc *geo.Location
	if s.Cache != nil {
		loc = s.Cache.LoadGeo(ctx)
	}
	if loc == nil {
		detected, err := geo.DetectLocation(ctx)
		if err != nil {
			return fmt.Errorf("auto-detection failed: %w", err)
		}
		loc = detected
		if s.Cache != nil {
			if err := s.Cache.SaveGeo(ctx, loc); err != nil {
				s.Log.Warn().Err(err).Msg("failed to cache location")
			}
		}
	}

	if key := loc.Key(); key != "" {
		s.Config.Location = key
	}
	s.Config.Latitude = loc.Latitude
	s.Config.Longitude = loc.Longitude
	if loc.Timezone != "" {
		s.Config.Timezone = loc.Timezone
	}
	s.Log.Debug().Str("location", s.Config.Location).Str("timezone", s.Config.Timezone).Msg("location detected")
	return nil
}

// Now returns the current time in the configured timezone, or local time
// when none is set or it is unknown.
func (s *Session) Now() time.Time {
	return s.Clock.Now()
}

// NewLoop returns a refresh loop over the session's store, evaluated on the
// session clock.
func (s *Session) NewLoop(opts ...schedule.Option) *schedule.Loop {
	base := []schedule.Option{schedule.WithLogger(s.Log), schedule.WithClock(s.Clock)}
	return schedule.NewLoop(s.Store, append(base, opts...)...)
}

// Close releases the cache backend.
func (s *Session) Close() {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Close(); err != nil {
		s.Log.Debug().Err(err).Msg("closing cache")
	}
}

// timeNow is replaced in tests.
var timeNow = time.Now

// wallClock reads timeNow and leaves tickers and timers to the wrapped clock.
type wallClock struct{ schedule.Clock }

func (wallClock) Now() time.Time { return timeNow() }

// zoneFor loads tz. It returns nil, meaning the process zone, when tz is
// empty or unknown.
func zoneFor(tz string, log zerolog.Logger) *time.Location {
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn().Err(err).Str("timezone", tz).Msg("unknown timezone, using local time")
		return nil
	}
	return loc
}

func (o *options) openSession(ctx context.Context, skipSun bool) (*Session, error) {
	return OpenSession(ctx, o.cfg, SessionOptions{
		NoCache:    o.noCache,
		AutoLocate: o.autoLocate,
		SkipSun:    skipSun,
	}, o.log)
}
