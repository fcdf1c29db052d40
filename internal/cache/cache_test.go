package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

func sampleTimes() prayer.TimeSet {
	return prayer.TimeSet{
		Fajr:    "4:35 am",
		Dhuhr:   "11:42 am",
		Asr:     "3:01 pm",
		Maghrib: "5:33 pm",
		Isha:    "6:47 pm",
	}
}

var testDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// New / Open
// ---------------------------------------------------------------------------

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "cache")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("directory %q was not created", dir)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(context.Background(), "", dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, ok := c.(*File); !ok {
		t.Errorf("Open(\"\") = %T, want *File", c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Open(ctx, "redis://localhost:1/0?dial_timeout=10ms", dir); err == nil {
		t.Error("Open() with unreachable redis should fail")
	}
	if _, err := Open(ctx, "redis://%zz", dir); err == nil {
		t.Error("Open() with malformed redis url should fail")
	}
}

// ---------------------------------------------------------------------------
// Prayer times
// ---------------------------------------------------------------------------

func TestTimes_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())
	ctx := context.Background()

	if err := c.SaveTimes(ctx, testDate, "dhaka", sampleTimes()); err != nil {
		t.Fatalf("SaveTimes error: %v", err)
	}

	entry := c.LoadTimes(ctx, testDate, "dhaka")
	if entry == nil {
		t.Fatal("LoadTimes returned nil after save")
	}
	if entry.Times != sampleTimes() {
		t.Errorf("Times = %+v, want %+v", entry.Times, sampleTimes())
	}
	if entry.Date != "2026-10-19" {
		t.Errorf("Date = %q, want %q", entry.Date, "2026-10-19")
	}

	// Location keys are case-insensitive.
	if c.LoadTimes(ctx, testDate, "Dhaka") == nil {
		t.Error("LoadTimes(\"Dhaka\") missed an entry saved as \"dhaka\"")
	}
}

func TestTimes_CacheMiss(t *testing.T) {
	c, _ := New(t.TempDir())
	if c.LoadTimes(context.Background(), testDate, "dhaka") != nil {
		t.Error("expected nil for cache miss, got entry")
	}
}

func TestTimes_OtherDay(t *testing.T) {
	c, _ := New(t.TempDir())
	ctx := context.Background()

	c.SaveTimes(ctx, testDate, "dhaka", sampleTimes())
	if c.LoadTimes(ctx, testDate.AddDate(0, 0, 1), "dhaka") != nil {
		t.Error("yesterday's entry served for today")
	}
}

func TestTimes_OtherLocation(t *testing.T) {
	c, _ := New(t.TempDir())
	ctx := context.Background()

	c.SaveTimes(ctx, testDate, "dhaka", sampleTimes())
	if c.LoadTimes(ctx, testDate, "sylhet") != nil {
		t.Error("entry for dhaka served for sylhet")
	}
}

func TestTimes_StaleDateInsideFile(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)
	ctx := context.Background()

	// A file under today's key whose payload claims another day is rejected.
	c.SaveTimes(ctx, testDate, "dhaka", sampleTimes())
	entries, _ := filepath.Glob(filepath.Join(dir, "times_*.json"))
	if len(entries) != 1 {
		t.Fatalf("found %d cache files, want 1", len(entries))
	}
	stale, _ := json.Marshal(TimesEntry{Date: "2026-10-18", Location: "dhaka", Times: sampleTimes()})
	os.WriteFile(entries[0], stale, 0o644)

	if c.LoadTimes(ctx, testDate, "dhaka") != nil {
		t.Error("stale payload should be treated as a miss")
	}
}

func TestTimes_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)
	ctx := context.Background()

	c.SaveTimes(ctx, testDate, "dhaka", sampleTimes())
	entries, _ := filepath.Glob(filepath.Join(dir, "times_*.json"))
	os.WriteFile(entries[0], []byte("{corrupt"), 0o644)

	if c.LoadTimes(ctx, testDate, "dhaka") != nil {
		t.Error("corrupted file should be treated as a miss")
	}
}

// ---------------------------------------------------------------------------
// Sun times
// ---------------------------------------------------------------------------

func TestSun_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())
	ctx := context.Background()
	sun := prayer.SunTimes{Sunrise: "5:50 AM", Sunset: "5:33 PM"}

	if err := c.SaveSun(ctx, testDate, 23.8103, 90.4125, "Asia/Dhaka", sun); err != nil {
		t.Fatalf("SaveSun error: %v", err)
	}
	entry := c.LoadSun(ctx, testDate, 23.8103, 90.4125, "Asia/Dhaka")
	if entry == nil {
		t.Fatal("LoadSun returned nil after save")
	}
	if entry.Sun != sun {
		t.Errorf("Sun = %+v, want %+v", entry.Sun, sun)
	}

	if c.LoadSun(ctx, testDate, 22.3569, 91.7832, "Asia/Dhaka") != nil {
		t.Error("entry served for a different coordinate")
	}
	if c.LoadSun(ctx, testDate, 23.8103, 90.4125, "UTC") != nil {
		t.Error("entry served for a different timezone")
	}
}

// ---------------------------------------------------------------------------
// Geolocation
// ---------------------------------------------------------------------------

func TestGeo_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())
	ctx := context.Background()
	loc := &geo.Location{Latitude: 23.71, Longitude: 90.41, City: "Dhaka", Timezone: "Asia/Dhaka"}

	if err := c.SaveGeo(ctx, loc); err != nil {
		t.Fatalf("SaveGeo error: %v", err)
	}
	got := c.LoadGeo(ctx)
	if got == nil {
		t.Fatal("LoadGeo returned nil after save")
	}
	if *got != *loc {
		t.Errorf("LoadGeo = %+v, want %+v", *got, *loc)
	}
}

func TestGeo_ExpiredTTL(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)

	old, _ := json.Marshal(GeoEntry{
		Location: geo.Location{City: "Dhaka"},
		CachedAt: time.Now().Add(-25 * time.Hour),
	})
	os.WriteFile(filepath.Join(dir, geoCacheFile), old, 0o644)

	if c.LoadGeo(context.Background()) != nil {
		t.Error("expected nil for expired geo cache")
	}
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

func TestHashKey(t *testing.T) {
	a := hashKey("2026-10-19", "dhaka")
	if a != hashKey("2026-10-19", "dhaka") {
		t.Error("hashKey is not deterministic")
	}
	if len(a) != 16 {
		t.Errorf("len(hashKey) = %d, want 16", len(a))
	}
	if a == hashKey("2026-10-20", "dhaka") {
		t.Error("different dates produced the same key")
	}
}

func TestEndOfDay(t *testing.T) {
	loc := time.FixedZone("BDT", 6*3600)
	got := endOfDay(time.Date(2026, 12, 31, 23, 59, 0, 0, loc))
	want := time.Date(2027, 1, 1, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("endOfDay = %v, want %v", got, want)
	}
}
