// Package cache keeps the day's fetched schedules so repeated invocations
// (tmux refreshes every few seconds) do not hit the network.
//
// Two backends exist: a directory of JSON files and a Redis instance shared
// between hosts. Entries are only valid for the calendar day they were saved
// for.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

const (
	dateLayout = "2006-01-02"
	geoTTL     = 24 * time.Hour
)

// Cache stores per-day prayer and sun times plus the last IP geolocation.
// Load methods return nil on a miss; backend failures are treated as misses.
type Cache interface {
	LoadTimes(ctx context.Context, date time.Time, location string) *TimesEntry
	SaveTimes(ctx context.Context, date time.Time, location string, times prayer.TimeSet) error
	LoadSun(ctx context.Context, date time.Time, lat, lon float64, tz string) *SunEntry
	SaveSun(ctx context.Context, date time.Time, lat, lon float64, tz string, sun prayer.SunTimes) error
	LoadGeo(ctx context.Context) *geo.Location
	SaveGeo(ctx context.Context, loc *geo.Location) error
	Close() error
}

// TimesEntry is one day's prayer times for a location.
type TimesEntry struct {
	Date     string         `json:"date"` // YYYY-MM-DD
	Location string         `json:"location"`
	Times    prayer.TimeSet `json:"times"`
}

// SunEntry is one day's sunrise and sunset for a coordinate, rendered in
// Timezone.
type SunEntry struct {
	Date      string          `json:"date"`
	Latitude  float64         `json:"lat"`
	Longitude float64         `json:"lon"`
	Timezone  string          `json:"tz,omitempty"`
	Sun       prayer.SunTimes `json:"sun"`
}

// GeoEntry is a cached geolocation result with a timestamp.
type GeoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// Open picks a backend: a redis:// or rediss:// URL selects Redis, anything
// else the file cache rooted at dir.
func Open(ctx context.Context, rawURL, dir string) (Cache, error) {
	if strings.HasPrefix(rawURL, "redis://") || strings.HasPrefix(rawURL, "rediss://") {
		return OpenRedis(ctx, rawURL)
	}
	return New(dir)
}

func timesKey(date, location string) string {
	return hashKey(date, strings.ToLower(location))
}

func sunKey(date string, lat, lon float64, tz string) string {
	return hashKey(date, fmt.Sprintf("%.4f", lat), fmt.Sprintf("%.4f", lon), tz)
}

// hashKey builds a short deterministic key from the parameters that
// distinguish one cached schedule from another.
func hashKey(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", h[:8])
}

// endOfDay is the instant the entries saved for date stop being valid.
func endOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, date.Location())
}
