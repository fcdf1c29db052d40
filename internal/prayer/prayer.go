package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SecondsPerDay is the length of the wall-clock day used for wraparound.
const SecondsPerDay = 24 * 60 * 60

// ErrUnparseable is wrapped by every ParseClock failure.
var ErrUnparseable = errors.New("unparseable time")

// Name identifies one of the five daily prayers.
type Name int

// The five prayers in their fixed daily order.
const (
	Fajr Name = iota
	Dhuhr
	Asr
	Maghrib
	Isha
)

// Order lists every prayer in chronological order. The order is fixed and
// never derived from parsed times.
var Order = [...]Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

var names = [...]string{"fajr", "dhuhr", "asr", "maghrib", "isha"}

// ShortNames maps prayers to single-character abbreviations.
var ShortNames = map[Name]string{
	Fajr:    "F",
	Dhuhr:   "D",
	Asr:     "A",
	Maghrib: "M",
	Isha:    "I",
}

// String returns the lower-case wire name, e.g. "maghrib".
func (n Name) String() string {
	if n < Fajr || n > Isha {
		return fmt.Sprintf("prayer(%d)", int(n))
	}
	return names[n]
}

// Title returns the display name, e.g. "Maghrib".
func (n Name) Title() string {
	s := n.String()
	if n < Fajr || n > Isha {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Short returns the abbreviated display name.
func (n Name) Short() string {
	return ShortNames[n]
}

// MarshalText encodes the prayer as its wire name.
func (n Name) MarshalText() ([]byte, error) {
	if n < Fajr || n > Isha {
		return nil, fmt.Errorf("unknown prayer %d", int(n))
	}
	return []byte(n.String()), nil
}

// UnmarshalText decodes a wire name, case-insensitively.
func (n *Name) UnmarshalText(b []byte) error {
	parsed, err := ParseName(string(b))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseName looks up a prayer by name, case-insensitively.
func ParseName(s string) (Name, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range Order {
		if names[n] == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown prayer name: %q", s)
}

// TimeSet holds one day's prayer times as localized strings such as
// "5:12 am" or "12:45 PM". It is replaced wholesale, never patched.
type TimeSet struct {
	Fajr    string `json:"fajr"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// Get returns the raw string for the given prayer.
func (s TimeSet) Get(n Name) string {
	switch n {
	case Fajr:
		return s.Fajr
	case Dhuhr:
		return s.Dhuhr
	case Asr:
		return s.Asr
	case Maghrib:
		return s.Maghrib
	case Isha:
		return s.Isha
	}
	return ""
}

// SunTimes holds the day's sunrise and sunset, e.g. "5:58 AM".
type SunTimes struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// NamedTime is a prayer with its start as seconds since midnight.
type NamedTime struct {
	Name    Name
	Seconds int
}

// ParseClock converts a 12-hour time string like "5:30 am" into minutes
// since midnight. A missing marker is read as am. Hours outside [1,12] and
// minutes outside [0,59] are rejected. An optional ":SS" suffix is accepted
// and dropped.
func ParseClock(text string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	isPM := strings.Contains(s, "pm")
	s = strings.ReplaceAll(s, "am", "")
	s = strings.ReplaceAll(s, "pm", "")
	s = strings.TrimSpace(s)

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: invalid time format %q", ErrUnparseable, text)
	}

	hour, ok := clockField(parts[0])
	if !ok {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrUnparseable, text)
	}
	minute, ok := clockField(parts[1])
	if !ok {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrUnparseable, text)
	}
	if len(parts) == 3 {
		sec, ok := clockField(parts[2])
		if !ok || sec > 59 {
			return 0, fmt.Errorf("%w: invalid second in %q", ErrUnparseable, text)
		}
	}

	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("%w: hour %d out of range in %q", ErrUnparseable, hour, text)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: minute %d out of range in %q", ErrUnparseable, minute, text)
	}

	switch {
	case isPM && hour != 12:
		hour += 12
	case !isPM && hour == 12:
		hour = 0
	}

	return hour*60 + minute, nil
}

// clockField reads one unsigned decimal field. Signs are rejected.
func clockField(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// NamedTimes parses every prayer in the set, in canonical order. Prayers
// whose strings fail to parse are left out.
func NamedTimes(times TimeSet) []NamedTime {
	out := make([]NamedTime, 0, len(Order))
	for _, n := range Order {
		minutes, err := ParseClock(times.Get(n))
		if err != nil {
			continue
		}
		out = append(out, NamedTime{Name: n, Seconds: minutes * 60})
	}
	return out
}

// State is the derived schedule at one instant.
type State struct {
	Current Name `json:"current"`
	Next    Name `json:"next"`
	// Remaining is the number of seconds from now until Next starts.
	Remaining int `json:"remaining"`
	// NextAt is Next's start in seconds since today's midnight. It exceeds
	// SecondsPerDay when Next falls tomorrow.
	NextAt int `json:"next_at"`
}

// Resolve determines the current prayer, the next prayer and the seconds
// remaining until it, for now given as seconds since midnight. It reports
// false when none of the times parse.
func Resolve(times TimeSet, now int) (State, bool) {
	parsed := NamedTimes(times)
	if len(parsed) == 0 {
		return State{}, false
	}

	cur, nxt := -1, -1
	for i, p := range parsed {
		if p.Seconds <= now {
			cur = i
		} else if nxt < 0 {
			nxt = i
		}
	}

	var st State
	switch {
	case cur < 0:
		// Before the day's first prayer: last night's isha is still in effect.
		st.Current = Isha
		st.Next = parsed[0].Name
		st.NextAt = parsed[0].Seconds
	case nxt < 0:
		st.Current = parsed[cur].Name
		st.Next = parsed[0].Name
		st.NextAt = parsed[0].Seconds + SecondsPerDay
	default:
		st.Current = parsed[cur].Name
		st.Next = parsed[nxt].Name
		st.NextAt = parsed[nxt].Seconds
	}

	if st.NextAt > now {
		st.Remaining = st.NextAt - now
	} else {
		st.Remaining = st.NextAt + SecondsPerDay - now
	}
	return st, true
}

// SecondsSinceMidnight returns t's wall-clock offset into its own day.
func SecondsSinceMidnight(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

// ResolveAt is Resolve against a wall-clock instant.
func ResolveAt(times TimeSet, now time.Time) (State, bool) {
	return Resolve(times, SecondsSinceMidnight(now))
}

// Instant returns the wall-clock time of a seconds-since-midnight offset on
// the day of ref, in ref's location. Offsets past SecondsPerDay land on the
// following day.
func Instant(ref time.Time, seconds int) time.Time {
	y, mo, d := ref.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, ref.Location())
	return midnight.Add(time.Duration(seconds) * time.Second)
}
