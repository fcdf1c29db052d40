// Package config provides persistent configuration for the prayer-clock CLI.
//
// Configuration is stored as JSON at ~/.config/prayer-clock/config.json
// (XDG-compliant). The merge priority is:
// CLI flags > environment (.env included) > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
)

const (
	configDirName  = "prayer-clock"
	configFileName = "config.json"
)

// Defaults for the original deployment (Dhaka).
const (
	DefaultLocation   = "dhaka"
	DefaultLatitude   = 23.8103
	DefaultLongitude  = 90.4125
	DefaultTimeFormat = "12h"
	DefaultTimeout    = "10s"
	DefaultListenAddr = ":8080"
	DefaultMQTTTopic  = "prayer-clock/state"
	DefaultLogLevel   = "warn"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"location",
	"latitude", "longitude",
	"timezone",
	"api_key", "api_host",
	"prayer_api_url", "sun_api_url",
	"time_format",
	"timeout",
	"cache_dir", "cache_url",
	"listen_addr",
	"mqtt_broker", "mqtt_topic",
	"log_level",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults).
type Config struct {
	Location     string  `json:"location,omitempty"` // prayer API location key, e.g. "dhaka"
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	Timezone     string  `json:"timezone,omitempty"` // IANA zone passed to the sunrise/sunset API
	APIKey       string  `json:"api_key,omitempty"`
	APIHost      string  `json:"api_host,omitempty"`
	PrayerAPIURL string  `json:"prayer_api_url,omitempty"`
	SunAPIURL    string  `json:"sun_api_url,omitempty"`
	TimeFormat   string  `json:"time_format,omitempty"` // "12h" or "24h"
	Timeout      string  `json:"timeout,omitempty"`     // Go duration, e.g. "10s"
	CacheDir     string  `json:"cache_dir,omitempty"`
	CacheURL     string  `json:"cache_url,omitempty"` // redis://... selects the Redis cache
	ListenAddr   string  `json:"listen_addr,omitempty"`
	MQTTBroker   string  `json:"mqtt_broker,omitempty"`
	MQTTTopic    string  `json:"mqtt_topic,omitempty"`
	LogLevel     string  `json:"log_level,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Location:     DefaultLocation,
		Latitude:     DefaultLatitude,
		Longitude:    DefaultLongitude,
		APIHost:      api.DefaultPrayerHost,
		PrayerAPIURL: api.DefaultPrayerBaseURL,
		SunAPIURL:    api.DefaultSunBaseURL,
		TimeFormat:   DefaultTimeFormat,
		Timeout:      DefaultTimeout,
		ListenAddr:   DefaultListenAddr,
		MQTTTopic:    DefaultMQTTTopic,
		LogLevel:     DefaultLogLevel,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadFrom reads the config at path. A missing file yields an empty Config;
// invalid JSON is an error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	// The file may hold an API key.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "location":
		if strings.ContainsAny(value, "/?# ") {
			return fmt.Errorf("invalid location %q: must be a single path segment such as \"dhaka\"", value)
		}
		c.Location = strings.ToLower(value)
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = v
	case "timezone":
		if value != "" {
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", value, err)
			}
		}
		c.Timezone = value
	case "api_key":
		c.APIKey = value
	case "api_host":
		c.APIHost = value
	case "prayer_api_url":
		if err := validateURL(value, "http", "https"); err != nil {
			return fmt.Errorf("invalid prayer_api_url: %w", err)
		}
		c.PrayerAPIURL = value
	case "sun_api_url":
		if err := validateURL(value, "http", "https"); err != nil {
			return fmt.Errorf("invalid sun_api_url: %w", err)
		}
		c.SunAPIURL = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q: must be a positive duration such as \"10s\"", value)
		}
		c.Timeout = value
	case "cache_dir":
		c.CacheDir = value
	case "cache_url":
		if value != "" {
			if err := validateURL(value, "redis", "rediss"); err != nil {
				return fmt.Errorf("invalid cache_url: %w", err)
			}
		}
		c.CacheURL = value
	case "listen_addr":
		c.ListenAddr = value
	case "mqtt_broker":
		if value != "" {
			if err := validateURL(value, "tcp", "ssl", "ws", "wss", "mqtt", "mqtts"); err != nil {
				return fmt.Errorf("invalid mqtt_broker: %w", err)
			}
		}
		c.MQTTBroker = value
	case "mqtt_topic":
		if strings.ContainsAny(value, "+#") {
			return fmt.Errorf("invalid mqtt_topic %q: wildcards are not allowed when publishing", value)
		}
		c.MQTTTopic = value
	case "log_level":
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", value)
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "location":
		return c.Location, nil
	case "latitude":
		if c.Latitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64), nil
	case "timezone":
		return c.Timezone, nil
	case "api_key":
		return c.APIKey, nil
	case "api_host":
		return c.APIHost, nil
	case "prayer_api_url":
		return c.PrayerAPIURL, nil
	case "sun_api_url":
		return c.SunAPIURL, nil
	case "time_format":
		return c.TimeFormat, nil
	case "timeout":
		return c.Timeout, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "cache_url":
		return c.CacheURL, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// WithDefaults returns a copy with every unset field filled from Defaults.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.Location == "" {
		c.Location = d.Location
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude, c.Longitude = d.Latitude, d.Longitude
	}
	if c.APIHost == "" {
		c.APIHost = d.APIHost
	}
	if c.PrayerAPIURL == "" {
		c.PrayerAPIURL = d.PrayerAPIURL
	}
	if c.SunAPIURL == "" {
		c.SunAPIURL = d.SunAPIURL
	}
	if c.TimeFormat == "" {
		c.TimeFormat = d.TimeFormat
	}
	if c.Timeout == "" {
		c.Timeout = d.Timeout
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.MQTTTopic == "" {
		c.MQTTTopic = d.MQTTTopic
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	return c
}

// TimeoutDuration parses Timeout, falling back to the default on error.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// Env mirrors Config for environment overrides.
type Env struct {
	Location     string  `env:"PRAYER_CLOCK_LOCATION"`
	Latitude     float64 `env:"PRAYER_CLOCK_LATITUDE"`
	Longitude    float64 `env:"PRAYER_CLOCK_LONGITUDE"`
	Timezone     string  `env:"PRAYER_CLOCK_TIMEZONE"`
	APIKey       string  `env:"RAPIDAPI_KEY"`
	APIHost      string  `env:"RAPIDAPI_HOST"`
	PrayerAPIURL string  `env:"PRAYER_CLOCK_PRAYER_API_URL"`
	SunAPIURL    string  `env:"PRAYER_CLOCK_SUN_API_URL"`
	TimeFormat   string  `env:"PRAYER_CLOCK_TIME_FORMAT"`
	Timeout      string  `env:"PRAYER_CLOCK_TIMEOUT"`
	CacheDir     string  `env:"PRAYER_CLOCK_CACHE_DIR"`
	CacheURL     string  `env:"PRAYER_CLOCK_CACHE_URL"`
	ListenAddr   string  `env:"PRAYER_CLOCK_LISTEN_ADDR"`
	MQTTBroker   string  `env:"PRAYER_CLOCK_MQTT_BROKER"`
	MQTTTopic    string  `env:"PRAYER_CLOCK_MQTT_TOPIC"`
	LogLevel     string  `env:"PRAYER_CLOCK_LOG_LEVEL"`
}

// LoadEnv reads environment overrides. Each existing dotenv file is loaded
// first; variables already set in the process environment win over it.
func LoadEnv(dotenvFiles ...string) (Env, error) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Env{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return e, nil
}

// ApplyEnv overlays every set environment value onto c.
func (c *Config) ApplyEnv(e Env) {
	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&c.Location, strings.ToLower(e.Location))
	if e.Latitude != 0 {
		c.Latitude = e.Latitude
	}
	if e.Longitude != 0 {
		c.Longitude = e.Longitude
	}
	overlay(&c.Timezone, e.Timezone)
	overlay(&c.APIKey, e.APIKey)
	overlay(&c.APIHost, e.APIHost)
	overlay(&c.PrayerAPIURL, e.PrayerAPIURL)
	overlay(&c.SunAPIURL, e.SunAPIURL)
	overlay(&c.TimeFormat, e.TimeFormat)
	overlay(&c.Timeout, e.Timeout)
	overlay(&c.CacheDir, e.CacheDir)
	overlay(&c.CacheURL, e.CacheURL)
	overlay(&c.ListenAddr, e.ListenAddr)
	overlay(&c.MQTTBroker, e.MQTTBroker)
	overlay(&c.MQTTTopic, e.MQTTTopic)
	overlay(&c.LogLevel, e.LogLevel)
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q: %w", raw, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q: scheme must be one of %s", raw, strings.Join(schemes, ", "))
}
