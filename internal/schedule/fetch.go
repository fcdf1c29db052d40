package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/cache"
)

// PrayerSource fetches the daily prayer schedule. *api.Client implements it.
type PrayerSource interface {
	FetchPrayerTimes(ctx context.Context, location string) (*api.PrayerResponse, error)
}

// SunSource fetches sunrise and sunset. *api.Client implements it.
type SunSource interface {
	FetchSunriseSunset(ctx context.Context, lat, lon float64, tzid string) (*api.SunResponse, error)
}

// FailurePolicy decides what a failed fetch does to the shared state.
type FailurePolicy int

const (
	// FailVisible records the error in the Store and returns it from Run.
	FailVisible FailurePolicy = iota
	// FailOpen logs the error and leaves the slot empty.
	FailOpen
)

func (p FailurePolicy) String() string {
	if p == FailOpen {
		return "fail-open"
	}
	return "fail-visible"
}

// Fetcher fills a Store from the two remote sources. The fetches run
// concurrently and never cancel each other.
type Fetcher struct {
	Store  *Store
	Prayer PrayerSource
	Sun    SunSource // nil skips sunrise/sunset

	Location  string
	Latitude  float64
	Longitude float64
	Timezone  string

	// Timeout bounds each fetch; zero means api.DefaultTimeout.
	Timeout time.Duration

	PrayerPolicy FailurePolicy
	SunPolicy    FailurePolicy

	Cache cache.Cache // nil disables caching
	Clock Clock       // nil means RealClock
	Log   zerolog.Logger
}

// NewFetcher returns a Fetcher with the default policies: prayer-time
// failures are visible, sunrise/sunset failures are absorbed.
func NewFetcher(store *Store, prayerSrc PrayerSource, sunSrc SunSource) *Fetcher {
	return &Fetcher{
		Store:        store,
		Prayer:       prayerSrc,
		Sun:          sunSrc,
		PrayerPolicy: FailVisible,
		SunPolicy:    FailOpen,
		Log:          zerolog.Nop(),
	}
}

// Run performs both fetches once and waits for them. It returns the first
// error produced under FailVisible.
func (f *Fetcher) Run(ctx context.Context) error {
	var g errgroup.Group

	f.Store.SetErr(nil)
	f.Store.SetLoading(true)
	g.Go(func() error {
		defer f.Store.SetLoading(false)
		if err := f.fetchTimes(ctx); err != nil {
			return f.fail(f.PrayerPolicy, "prayer times", err)
		}
		return nil
	})

	if f.Sun != nil {
		g.Go(func() error {
			if err := f.fetchSun(ctx); err != nil {
				return f.fail(f.SunPolicy, "sunrise/sunset", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// RunDaily calls Run now and again shortly after every local midnight until
// ctx is done, then returns nil. Errors are already recorded per policy, so
// they are only logged here.
func (f *Fetcher) RunDaily(ctx context.Context) error {
	for {
		if err := f.Run(ctx); err != nil {
			f.Log.Warn().Err(err).Msg("schedule fetch failed")
		}

		wait := untilNextDay(f.clock().Now())
		f.Log.Debug().Dur("in", wait).Msg("next schedule fetch")
		select {
		case <-ctx.Done():
			return nil
		case <-f.clock().After(wait):
		}
	}
}

func (f *Fetcher) fetchTimes(ctx context.Context) error {
	today := f.clock().Now()

	if f.Cache != nil {
		if entry := f.Cache.LoadTimes(ctx, today, f.Location); entry != nil {
			f.Log.Debug().Str("location", f.Location).Msg("prayer times from cache")
			f.Store.SetTimes(entry.Times)
			return nil
		}
	}

	fctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	resp, err := f.Prayer.FetchPrayerTimes(fctx, f.Location)
	if err != nil {
		return err
	}
	item, err := resp.Today()
	if err != nil {
		return err
	}

	times := item.TimeSet()
	f.Store.SetTimes(times)

	if f.Cache != nil {
		if err := f.Cache.SaveTimes(ctx, today, f.Location, times); err != nil {
			f.Log.Warn().Err(err).Msg("failed to cache prayer times")
		}
	}
	return nil
}

func (f *Fetcher) fetchSun(ctx context.Context) error {
	today := f.clock().Now()

	if f.Cache != nil {
		if entry := f.Cache.LoadSun(ctx, today, f.Latitude, f.Longitude, f.Timezone); entry != nil {
			f.Store.SetSun(entry.Sun)
			return nil
		}
	}

	fctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	resp, err := f.Sun.FetchSunriseSunset(fctx, f.Latitude, f.Longitude, f.Timezone)
	if err != nil {
		return err
	}
	sun, err := resp.SunTimes()
	if err != nil {
		return err
	}

	f.Store.SetSun(sun)

	if f.Cache != nil {
		if err := f.Cache.SaveSun(ctx, today, f.Latitude, f.Longitude, f.Timezone, sun); err != nil {
			f.Log.Warn().Err(err).Msg("failed to cache sunrise/sunset")
		}
	}
	return nil
}

func (f *Fetcher) fail(policy FailurePolicy, what string, err error) error {
	err = fmt.Errorf("fetching %s: %w", what, err)
	if policy == FailOpen {
		f.Log.Debug().Err(err).Msg("fetch failed, continuing without it")
		return nil
	}
	f.Store.SetErr(err)
	return err
}

func (f *Fetcher) timeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return api.DefaultTimeout
}

func (f *Fetcher) clock() Clock {
	if f.Clock != nil {
		return f.Clock
	}
	return RealClock
}

// untilNextDay is the wait from now until a minute past the next local
// midnight, when the new day's schedule is published upstream.
func untilNextDay(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 1, 0, 0, now.Location())
	return next.Sub(now)
}
