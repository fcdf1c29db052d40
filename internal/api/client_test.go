package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// samplePrayerResponse returns a valid prayer-time API response for testing.
func samplePrayerResponse() PrayerResponse {
	return PrayerResponse{
		Title:       "",
		Query:       "dhaka",
		For:         "daily",
		Method:      5,
		Timezone:    "6",
		StatusValid: 1,
		Items: []DailyItem{
			{
				DateFor: "2026-10-19",
				Fajr:    "4:35 am",
				Shurooq: "5:50 am",
				Dhuhr:   "11:42 am",
				Asr:     "3:01 pm",
				Maghrib: "5:33 pm",
				Isha:    "6:47 pm",
			},
			{
				DateFor: "2026-10-20",
				Fajr:    "4:36 am",
			},
		},
	}
}

func sampleSunResponse() SunResponse {
	return SunResponse{
		Status: "OK",
		Results: SunResults{
			Sunrise:   "5:50:12 AM",
			Sunset:    "5:33:47 PM",
			SolarNoon: "11:42:00 AM",
			DayLength: "11:43:35",
		},
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(0)
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
	if c.PrayerBaseURL != DefaultPrayerBaseURL {
		t.Errorf("PrayerBaseURL = %q, want %q", c.PrayerBaseURL, DefaultPrayerBaseURL)
	}
	if c.SunBaseURL != DefaultSunBaseURL {
		t.Errorf("SunBaseURL = %q, want %q", c.SunBaseURL, DefaultSunBaseURL)
	}
	if c.APIHost != DefaultPrayerHost {
		t.Errorf("APIHost = %q, want %q", c.APIHost, DefaultPrayerHost)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
}

func TestFetchPrayerTimes_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dhaka.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-RapidAPI-Key"); got != "secret" {
			t.Errorf("X-RapidAPI-Key = %q, want %q", got, "secret")
		}
		if got := r.Header.Get("X-RapidAPI-Host"); got != DefaultPrayerHost {
			t.Errorf("X-RapidAPI-Host = %q, want %q", got, DefaultPrayerHost)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(samplePrayerResponse())
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.PrayerBaseURL = server.URL
	c.APIKey = "secret"

	got, err := c.FetchPrayerTimes(context.Background(), "Dhaka")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	today, err := got.Today()
	if err != nil {
		t.Fatalf("Today() error: %v", err)
	}
	if today.Fajr != "4:35 am" {
		t.Errorf("Fajr = %q, want %q", today.Fajr, "4:35 am")
	}

	ts := today.TimeSet()
	if ts.Isha != "6:47 pm" || ts.Dhuhr != "11:42 am" {
		t.Errorf("TimeSet() = %+v", ts)
	}
}

func TestFetchPrayerTimes_NoKeyHeaderWhenUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["X-Rapidapi-Key"]; ok {
			t.Error("X-RapidAPI-Key should not be sent without a key")
		}
		json.NewEncoder(w).Encode(samplePrayerResponse())
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.PrayerBaseURL = server.URL

	if _, err := c.FetchPrayerTimes(context.Background(), "dhaka"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchPrayerTimes_EmptyLocation(t *testing.T) {
	c := NewClient(time.Second)
	if _, err := c.FetchPrayerTimes(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty location")
	}
}

func TestFetchPrayerTimes_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.PrayerBaseURL = server.URL

	_, err := c.FetchPrayerTimes(context.Background(), "dhaka")
	if err == nil {
		t.Fatal("expected error for HTTP 503, got nil")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should mention 503, got: %v", err)
	}
}

func TestFetchPrayerTimes_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.PrayerBaseURL = server.URL

	_, err := c.FetchPrayerTimes(context.Background(), "dhaka")
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error should mention decode, got: %v", err)
	}
}

func TestFetchPrayerTimes_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(50 * time.Millisecond)
	c.PrayerBaseURL = server.URL

	if _, err := c.FetchPrayerTimes(context.Background(), "dhaka"); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestFetchPrayerTimes_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(samplePrayerResponse())
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.PrayerBaseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchPrayerTimes(ctx, "dhaka"); err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

func TestFetchPrayerTimes_ConnectionRefused(t *testing.T) {
	c := NewClient(time.Second)
	c.PrayerBaseURL = "http://127.0.0.1:1" // nothing listening

	if _, err := c.FetchPrayerTimes(context.Background(), "dhaka"); err == nil {
		t.Fatal("expected error for connection refused, got nil")
	}
}

func TestFetchSunriseSunset_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "23.8103" {
			t.Errorf("lat = %q, want %q", q.Get("lat"), "23.8103")
		}
		if q.Get("lng") != "90.4125" {
			t.Errorf("lng = %q, want %q", q.Get("lng"), "90.4125")
		}
		if q.Get("tzid") != "Asia/Dhaka" {
			t.Errorf("tzid = %q, want %q", q.Get("tzid"), "Asia/Dhaka")
		}
		json.NewEncoder(w).Encode(sampleSunResponse())
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.SunBaseURL = server.URL

	got, err := c.FetchSunriseSunset(context.Background(), 23.8103, 90.4125, "Asia/Dhaka")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sun, err := got.SunTimes()
	if err != nil {
		t.Fatalf("SunTimes() error: %v", err)
	}
	if sun.Sunrise != "5:50 AM" {
		t.Errorf("Sunrise = %q, want %q", sun.Sunrise, "5:50 AM")
	}
	if sun.Sunset != "5:33 PM" {
		t.Errorf("Sunset = %q, want %q", sun.Sunset, "5:33 PM")
	}
}

func TestFetchSunriseSunset_NoTZID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("tzid") {
			t.Error("tzid should not be sent when empty")
		}
		json.NewEncoder(w).Encode(sampleSunResponse())
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.SunBaseURL = server.URL

	if _, err := c.FetchSunriseSunset(context.Background(), 1, 2, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchSunriseSunset_StatusNotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SunResponse{Status: "INVALID_REQUEST"})
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.SunBaseURL = server.URL

	_, err := c.FetchSunriseSunset(context.Background(), 1, 2, "")
	if err == nil {
		t.Fatal("expected error for non-OK status, got nil")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("error should mention status, got: %v", err)
	}
}
