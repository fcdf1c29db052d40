package cli

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/cache"
	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

func TestOpenSession_WiresFetcher(t *testing.T) {
	cfg := config.Config{CacheDir: t.TempDir(), Timezone: "Asia/Dhaka"}.WithDefaults()

	s, err := OpenSession(context.Background(), cfg, SessionOptions{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Cache == nil {
		t.Error("file cache should be enabled by default")
	}
	f := s.Fetcher
	if f.Location != "dhaka" || f.Latitude != config.DefaultLatitude || f.Timezone != "Asia/Dhaka" {
		t.Errorf("fetcher = %+v", f)
	}
	if f.Sun == nil {
		t.Error("sun source missing")
	}
	if f.Timeout != cfg.TimeoutDuration() {
		t.Errorf("timeout = %v", f.Timeout)
	}
}

func TestOpenSession_NoCacheSkipSun(t *testing.T) {
	cfg := config.Config{CacheDir: t.TempDir()}.WithDefaults()

	s, err := OpenSession(context.Background(), cfg, SessionOptions{NoCache: true, SkipSun: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Cache != nil || s.Fetcher.Cache != nil {
		t.Error("cache should be off")
	}
	if s.Fetcher.Sun != nil {
		t.Error("sun source should be nil")
	}
}

func TestOpenSession_AutoLocateFromCache(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	loc := &geo.Location{Latitude: 40.7128, Longitude: -74.006, City: "New York", Country: "US", Timezone: "America/New_York"}
	if err := c.SaveGeo(context.Background(), loc); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{CacheDir: dir}.WithDefaults()
	s, err := OpenSession(context.Background(), cfg, SessionOptions{AutoLocate: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Config.Location != "new-york" || s.Fetcher.Location != "new-york" {
		t.Errorf("location = %q / %q, want new-york", s.Config.Location, s.Fetcher.Location)
	}
	if s.Fetcher.Latitude != 40.7128 || s.Fetcher.Timezone != "America/New_York" {
		t.Errorf("fetcher = %+v", s.Fetcher)
	}
	if now := s.Now(); now.Location().String() != "America/New_York" {
		t.Errorf("Now() zone = %v", now.Location())
	}
}

func TestSession_LoopMatchesNow(t *testing.T) {
	// The process zone is UTC here; the configured zone is six hours ahead.
	prev := timeNow
	timeNow = func() time.Time { return time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = prev })

	cfg := config.Config{CacheDir: t.TempDir(), Timezone: "Asia/Dhaka"}.WithDefaults()
	s, err := OpenSession(context.Background(), cfg, SessionOptions{NoCache: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.Fetcher.Clock != s.Clock {
		t.Error("fetcher should share the session clock")
	}
	if now := s.Now(); now.Hour() != 13 || now.Location().String() != "Asia/Dhaka" {
		t.Fatalf("Now() = %v, want 13:00 Asia/Dhaka", now)
	}

	times := prayer.TimeSet{Fajr: "5:12 am", Dhuhr: "12:10 pm", Asr: "4:30 pm", Maghrib: "6:45 pm", Isha: "8:00 pm"}
	s.Store.SetTimes(times)

	loop := s.NewLoop()
	ticks := make(chan schedule.Tick, 8)
	loop.Subscribe(func(tk schedule.Tick) { ticks <- tk })
	if err := loop.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer loop.Stop()

	var got schedule.Tick
	select {
	case got = <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick from loop")
	}

	want := schedule.Evaluate(times, s.Now())
	if got.State != want.State || got.Countdown != want.Countdown {
		t.Errorf("loop tick = %+v, one-shot = %+v", got.State, want.State)
	}
	if got.State.Current != prayer.Dhuhr || got.Countdown != "3h 30m 00s" {
		t.Errorf("loop tick = %v %q, want dhuhr 3h 30m 00s", got.State.Current, got.Countdown)
	}
}

func TestSendLatest_NeverBlocks(t *testing.T) {
	ch := make(chan bool, 1)
	sendLatest(ch, true)
	sendLatest(ch, false)
	if v := <-ch; v {
		t.Error("sendLatest should keep only the newest value")
	}

	// Nobody reads any more; overlapping senders must still return.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v bool) {
			defer wg.Done()
			sendLatest(ch, v)
		}(i%2 == 0)
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sendLatest blocked")
	}
}
