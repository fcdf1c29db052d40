package api

import "testing"

func TestTrimSeconds(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"morning", "5:58:12 AM", "5:58 AM", false},
		{"evening", "12:01:59 PM", "12:01 PM", false},
		{"already trimmed", "6:10 PM", "6:10 PM", false},
		{"extra spaces", "  5:58:12   AM ", "5:58 AM", false},
		{"missing marker", "5:58:12", "", true},
		{"no colon", "558 AM", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrimSeconds(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("TrimSeconds(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("TrimSeconds(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("TrimSeconds(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrayerResponse_TodayEmpty(t *testing.T) {
	r := &PrayerResponse{Query: "nowhere"}
	if _, err := r.Today(); err == nil {
		t.Fatal("expected error for empty item list")
	}
}

func TestPrayerResponse_TodayUsesFirstItem(t *testing.T) {
	r := &PrayerResponse{Items: []DailyItem{{Fajr: "4:00 am"}, {Fajr: "4:01 am"}}}
	got, err := r.Today()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Fajr != "4:00 am" {
		t.Errorf("Fajr = %q, want first item's", got.Fajr)
	}
}

func TestSunResponse_SunTimesMalformed(t *testing.T) {
	r := &SunResponse{Status: "OK", Results: SunResults{Sunrise: "bad", Sunset: "6:00:00 PM"}}
	if _, err := r.SunTimes(); err == nil {
		t.Fatal("expected error for malformed sunrise")
	}
}
