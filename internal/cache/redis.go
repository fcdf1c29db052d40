package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

const keyPrefix = "prayer-clock:"

// Redis is the Cache backed by a Redis server. Day entries expire at the
// end of the day they belong to.
type Redis struct {
	rdb *redis.Client
	now func() time.Time
}

var _ Cache = (*Redis)(nil)

// OpenRedis connects to rawURL and pings the server.
func OpenRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedis(rdb), nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, now: time.Now}
}

// Ping reports whether the server is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) LoadTimes(ctx context.Context, date time.Time, location string) *TimesEntry {
	dateStr := date.Format(dateLayout)
	var entry TimesEntry
	if !c.get(ctx, "times:"+timesKey(dateStr, location), &entry) || entry.Date != dateStr {
		return nil
	}
	return &entry
}

func (c *Redis) SaveTimes(ctx context.Context, date time.Time, location string, times prayer.TimeSet) error {
	dateStr := date.Format(dateLayout)
	entry := TimesEntry{Date: dateStr, Location: location, Times: times}
	return c.set(ctx, "times:"+timesKey(dateStr, location), entry, endOfDay(date).Sub(c.now()))
}

func (c *Redis) LoadSun(ctx context.Context, date time.Time, lat, lon float64, tz string) *SunEntry {
	dateStr := date.Format(dateLayout)
	var entry SunEntry
	if !c.get(ctx, "sun:"+sunKey(dateStr, lat, lon, tz), &entry) || entry.Date != dateStr {
		return nil
	}
	return &entry
}

func (c *Redis) SaveSun(ctx context.Context, date time.Time, lat, lon float64, tz string, sun prayer.SunTimes) error {
	dateStr := date.Format(dateLayout)
	entry := SunEntry{Date: dateStr, Latitude: lat, Longitude: lon, Timezone: tz, Sun: sun}
	return c.set(ctx, "sun:"+sunKey(dateStr, lat, lon, tz), entry, endOfDay(date).Sub(c.now()))
}

func (c *Redis) LoadGeo(ctx context.Context) *geo.Location {
	var entry GeoEntry
	if !c.get(ctx, "geo", &entry) {
		return nil
	}
	return &entry.Location
}

func (c *Redis) SaveGeo(ctx context.Context, loc *geo.Location) error {
	return c.set(ctx, "geo", GeoEntry{Location: *loc, CachedAt: c.now()}, geoTTL)
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func (c *Redis) get(ctx context.Context, key string, v any) bool {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Debug().Err(err).Str("key", key).Msg("redis cache read failed")
		}
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *Redis) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		// The day is already over; nothing worth keeping.
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache write: %w", err)
	}
	return nil
}
