package api

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

// PrayerResponse is the top-level prayer-time API response.
type PrayerResponse struct {
	Title             string      `json:"title"`
	Query             string      `json:"query"`
	For               string      `json:"for"`
	Method            int         `json:"method"`
	Timezone          string      `json:"timezone"`
	StatusValid       int         `json:"status_valid"`
	StatusDescription string      `json:"status_description"`
	Items             []DailyItem `json:"items"`
}

// DailyItem holds one day's times as localized strings, e.g. "5:12 am".
type DailyItem struct {
	DateFor string `json:"date_for"`
	Fajr    string `json:"fajr"`
	Shurooq string `json:"shurooq"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// TimeSet converts the item into the five prayer slots.
func (d DailyItem) TimeSet() prayer.TimeSet {
	return prayer.TimeSet{
		Fajr:    d.Fajr,
		Dhuhr:   d.Dhuhr,
		Asr:     d.Asr,
		Maghrib: d.Maghrib,
		Isha:    d.Isha,
	}
}

// Today returns the first daily item. Later items are ignored.
func (r *PrayerResponse) Today() (DailyItem, error) {
	if len(r.Items) == 0 {
		return DailyItem{}, fmt.Errorf("API returned no prayer times for %q", r.Query)
	}
	return r.Items[0], nil
}

// SunResponse is the sunrise/sunset API response.
type SunResponse struct {
	Results SunResults `json:"results"`
	Status  string     `json:"status"`
	TZID    string     `json:"tzid"`
}

// SunResults holds the day's solar events as "5:58:12 AM"-style strings.
type SunResults struct {
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
	SolarNoon string `json:"solar_noon"`
	DayLength string `json:"day_length"`
}

// SunTimes reformats sunrise and sunset to "H:MM AM" for display.
func (r *SunResponse) SunTimes() (prayer.SunTimes, error) {
	rise, err := TrimSeconds(r.Results.Sunrise)
	if err != nil {
		return prayer.SunTimes{}, fmt.Errorf("sunrise: %w", err)
	}
	set, err := TrimSeconds(r.Results.Sunset)
	if err != nil {
		return prayer.SunTimes{}, fmt.Errorf("sunset: %w", err)
	}
	return prayer.SunTimes{Sunrise: rise, Sunset: set}, nil
}

// TrimSeconds turns "5:58:12 AM" into "5:58 AM".
func TrimSeconds(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", fmt.Errorf("invalid time %q: want \"H:MM:SS AM\"", s)
	}
	clock := strings.Split(fields[0], ":")
	if len(clock) < 2 {
		return "", fmt.Errorf("invalid time %q: want \"H:MM:SS AM\"", s)
	}
	return clock[0] + ":" + clock[1] + " " + fields[1], nil
}
