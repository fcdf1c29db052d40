package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

// DefaultPeriod is the refresh interval.
const DefaultPeriod = time.Second

// ErrRunning is returned by Start when the loop is already running.
var ErrRunning = errors.New("refresh loop already running")

// Tick is the state published on every refresh.
type Tick struct {
	At    time.Time    `json:"at"`
	Empty bool         `json:"empty"` // no prayer time in the set parsed
	State prayer.State `json:"state"`

	CurrentDisplay string `json:"current_display,omitempty"`
	NextDisplay    string `json:"next_display,omitempty"`
	Countdown      string `json:"countdown,omitempty"`
}

// Evaluate runs parse, resolve and format for one instant.
func Evaluate(times prayer.TimeSet, now time.Time) Tick {
	st, ok := prayer.ResolveAt(times, now)
	if !ok {
		return Tick{At: now, Empty: true}
	}
	return Tick{
		At:             now,
		State:          st,
		CurrentDisplay: st.Current.Title(),
		NextDisplay:    st.Next.Title(),
		Countdown:      prayer.FormatCountdown(st.Remaining),
	}
}

// Observer receives ticks on the loop goroutine. It must not block and must
// not call Stop.
type Observer func(Tick)

// Loop re-evaluates the stored schedule once per period and hands the
// result to its observers. Ticks never overlap.
type Loop struct {
	store  *Store
	clock  Clock
	period time.Duration
	log    zerolog.Logger

	obsMu     sync.Mutex
	observers map[int]Observer
	order     []int
	nextID    int

	latest atomic.Pointer[Tick]

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithPeriod changes the refresh interval.
func WithPeriod(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.period = d
		}
	}
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// NewLoop returns a stopped loop reading from store.
func NewLoop(store *Store, opts ...Option) *Loop {
	l := &Loop{
		store:     store,
		clock:     RealClock,
		period:    DefaultPeriod,
		log:       zerolog.Nop(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Subscribe registers fn and returns a function that removes it. Observers
// are called in subscription order.
func (l *Loop) Subscribe(fn Observer) (unsubscribe func()) {
	l.obsMu.Lock()
	id := l.nextID
	l.nextID++
	l.observers[id] = fn
	l.order = append(l.order, id)
	l.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.obsMu.Lock()
			defer l.obsMu.Unlock()
			delete(l.observers, id)
			for i, v := range l.order {
				if v == id {
					l.order = append(l.order[:i], l.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Start evaluates once immediately and then on every period until Stop is
// called or ctx is done.
func (l *Loop) Start(ctx context.Context) error {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	if l.done != nil {
		select {
		case <-l.done:
			// Previous run ended through ctx; allow a restart.
		default:
			return ErrRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := l.clock.NewTicker(l.period)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go l.run(ctx, ticker, done)
	return nil
}

// Stop ends the loop and waits for the goroutine to exit. No observer is
// called after Stop returns. Calling Stop more than once, or on a loop that
// never started, is a no-op.
func (l *Loop) Stop() {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
}

// Done is closed when the current run ends. It is nil before Start.
func (l *Loop) Done() <-chan struct{} {
	l.runMu.Lock()
	defer l.runMu.Unlock()
	return l.done
}

// Latest returns the last published tick.
func (l *Loop) Latest() (Tick, bool) {
	t := l.latest.Load()
	if t == nil {
		return Tick{}, false
	}
	return *t, true
}

// Store returns the store the loop reads from.
func (l *Loop) Store() *Store {
	return l.store
}

func (l *Loop) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("refresh tick failed")
		}
	}()

	// Both channels may be ready at once; cancellation wins.
	if ctx.Err() != nil {
		return
	}

	times, ok := l.store.Times()
	if !ok {
		return
	}

	t := Evaluate(times, l.clock.Now())
	l.latest.Store(&t)

	for _, fn := range l.snapshot() {
		l.notify(fn, t)
	}
}

func (l *Loop) snapshot() []Observer {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	out := make([]Observer, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.observers[id])
	}
	return out
}

func (l *Loop) notify(fn Observer, t Tick) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("tick observer failed")
		}
	}()
	fn(t)
}
