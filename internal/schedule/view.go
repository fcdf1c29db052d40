package schedule

import "github.com/smokyabdulrahman/prayer-clock/internal/prayer"

// View is the read-only snapshot handed to renderers.
type View struct {
	Loading   bool             `json:"loading"`
	Error     string           `json:"error,omitempty"`
	Times     *prayer.TimeSet  `json:"times,omitempty"`
	Sun       *prayer.SunTimes `json:"sun,omitempty"`
	Current   string           `json:"current,omitempty"`
	Next      string           `json:"next,omitempty"`
	Remaining int              `json:"remaining"`
	Countdown string           `json:"countdown,omitempty"`
	Empty     bool             `json:"empty,omitempty"`
}

// Snapshot combines the store's raw slots with a tick's derived state.
// A nil tick yields a view without current/next.
func Snapshot(s *Store, t *Tick) View {
	v := View{Loading: s.Loading()}
	if err := s.Err(); err != nil {
		v.Error = err.Error()
	}
	if times, ok := s.Times(); ok {
		v.Times = &times
	}
	if sun, ok := s.Sun(); ok {
		v.Sun = &sun
	}
	if t == nil {
		return v
	}
	if t.Empty {
		v.Empty = true
		return v
	}
	v.Current = t.State.Current.String()
	v.Next = t.State.Next.String()
	v.Remaining = t.State.Remaining
	v.Countdown = t.Countdown
	return v
}

// View returns the current snapshot using the latest published tick.
func (l *Loop) View() View {
	if t, ok := l.Latest(); ok {
		return Snapshot(l.store, &t)
	}
	return Snapshot(l.store, nil)
}
