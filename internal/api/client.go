package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPrayerBaseURL = "https://muslimsalat.p.rapidapi.com"
	DefaultPrayerHost    = "muslimsalat.p.rapidapi.com"
	DefaultSunBaseURL    = "https://api.sunrise-sunset.org"
	DefaultTimeout       = 10 * time.Second
)

// Client talks to the prayer-time and sunrise/sunset APIs.
type Client struct {
	httpClient *http.Client

	// PrayerBaseURL and SunBaseURL are exported for testing with httptest.
	PrayerBaseURL string
	SunBaseURL    string

	// APIKey and APIHost are sent as RapidAPI headers on prayer-time requests.
	APIKey  string
	APIHost string
}

// NewClient creates a client whose requests give up after timeout.
// A zero timeout uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		PrayerBaseURL: DefaultPrayerBaseURL,
		SunBaseURL:    DefaultSunBaseURL,
		APIHost:       DefaultPrayerHost,
	}
}

// FetchPrayerTimes fetches the daily schedule list for a location key such
// as "dhaka".
func (c *Client) FetchPrayerTimes(ctx context.Context, location string) (*PrayerResponse, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	endpoint := fmt.Sprintf("%s/%s.json", strings.TrimRight(c.PrayerBaseURL, "/"), url.PathEscape(strings.ToLower(location)))

	headers := http.Header{}
	if c.APIKey != "" {
		headers.Set("X-RapidAPI-Key", c.APIKey)
	}
	if c.APIHost != "" {
		headers.Set("X-RapidAPI-Host", c.APIHost)
	}

	var resp PrayerResponse
	if err := c.doRequest(ctx, endpoint, headers, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchSunriseSunset fetches today's sunrise and sunset for a coordinate.
// tzid is an optional IANA zone; without it the API answers in UTC.
func (c *Client) FetchSunriseSunset(ctx context.Context, lat, lon float64, tzid string) (*SunResponse, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lon, 'f', -1, 64))
	if tzid != "" {
		params.Set("tzid", tzid)
	}
	endpoint := fmt.Sprintf("%s/json?%s", strings.TrimRight(c.SunBaseURL, "/"), params.Encode())

	var resp SunResponse
	if err := c.doRequest(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("API error: status=%s", resp.Status)
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}
