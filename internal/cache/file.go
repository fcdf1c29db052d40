package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

const (
	timesCacheFile = "times_%s.json" // keyed by hash
	sunCacheFile   = "sun_%s.json"
	geoCacheFile   = "geolocation.json"
)

// File is the directory-backed Cache.
type File struct {
	dir string
}

var _ Cache = (*File)(nil)

// New creates a file cache rooted at dir.
// If dir is empty, it defaults to ~/.cache/prayer-clock/.
func New(dir string) (*File, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "prayer-clock")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &File{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *File) Dir() string { return c.dir }

// LoadTimes returns the cached prayer times for date, or nil when missing
// or saved for another day.
func (c *File) LoadTimes(_ context.Context, date time.Time, location string) *TimesEntry {
	dateStr := date.Format(dateLayout)
	var entry TimesEntry
	if !c.read(fmt.Sprintf(timesCacheFile, timesKey(dateStr, location)), &entry) {
		return nil
	}
	if entry.Date != dateStr {
		return nil
	}
	return &entry
}

// SaveTimes writes the day's prayer times.
func (c *File) SaveTimes(_ context.Context, date time.Time, location string, times prayer.TimeSet) error {
	dateStr := date.Format(dateLayout)
	entry := TimesEntry{Date: dateStr, Location: location, Times: times}
	return c.write(fmt.Sprintf(timesCacheFile, timesKey(dateStr, location)), entry)
}

// LoadSun returns the cached sunrise and sunset for date, or nil.
func (c *File) LoadSun(_ context.Context, date time.Time, lat, lon float64, tz string) *SunEntry {
	dateStr := date.Format(dateLayout)
	var entry SunEntry
	if !c.read(fmt.Sprintf(sunCacheFile, sunKey(dateStr, lat, lon, tz)), &entry) {
		return nil
	}
	if entry.Date != dateStr {
		return nil
	}
	return &entry
}

// SaveSun writes the day's sunrise and sunset.
func (c *File) SaveSun(_ context.Context, date time.Time, lat, lon float64, tz string, sun prayer.SunTimes) error {
	dateStr := date.Format(dateLayout)
	entry := SunEntry{Date: dateStr, Latitude: lat, Longitude: lon, Timezone: tz, Sun: sun}
	return c.write(fmt.Sprintf(sunCacheFile, sunKey(dateStr, lat, lon, tz)), entry)
}

// LoadGeo returns the cached geolocation unless it is older than 24 hours.
func (c *File) LoadGeo(_ context.Context) *geo.Location {
	var entry GeoEntry
	if !c.read(geoCacheFile, &entry) {
		return nil
	}
	if time.Since(entry.CachedAt) > geoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo writes a geolocation result.
func (c *File) SaveGeo(_ context.Context, loc *geo.Location) error {
	return c.write(geoCacheFile, GeoEntry{Location: *loc, CachedAt: time.Now()})
}

// Close is a no-op for the file cache.
func (c *File) Close() error { return nil }

func (c *File) read(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *File) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
