// Package notify implements a one-shot timed message: shown for VisibleFor,
// then fading for FadeFor, then hidden.
package notify

import (
	"slices"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	VisibleFor = 3000 * time.Millisecond
	FadeFor    = 300 * time.Millisecond
)

type Phase int

const (
	Hidden Phase = iota
	Shown
	Hiding
)

func (p Phase) String() string {
	switch p {
	case Shown:
		return "shown"
	case Hiding:
		return "hiding"
	default:
		return "hidden"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Notice is a snapshot of the notifier. Remaining is the time left in the
// current phase.
type Notice struct {
	Message   string        `json:"message,omitempty"`
	Phase     Phase         `json:"phase"`
	Remaining time.Duration `json:"-"`
}

// MarshalJSON reports Remaining in whole milliseconds.
func (n Notice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message   string `json:"message,omitempty"`
		Phase     Phase  `json:"phase"`
		Remaining int64  `json:"remaining_ms"`
	}{n.Message, n.Phase, n.Remaining.Milliseconds()})
}

// Visible reports whether the message is on screen, fading or not.
func (n Notice) Visible() bool {
	return n.Phase != Hidden
}

// Timer is the part of *time.Timer the notifier needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

type Option func(*Notifier)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// WithAfterFunc replaces time.AfterFunc for push notifications.
func WithAfterFunc(after AfterFunc) Option {
	return func(n *Notifier) { n.after = after }
}

type Notifier struct {
	mu        sync.Mutex
	now       func() time.Time
	after     AfterFunc
	message   string
	shownAt   time.Time
	gen       uint64
	timers    []Timer
	observers []func(Notice)
}

func New(opts ...Option) *Notifier {
	n := &Notifier{
		now: time.Now,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show displays message, restarting the cycle if one is running.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	n.stopTimersLocked()
	n.gen++
	gen := n.gen
	n.message = message
	n.shownAt = n.now()

	var observers []func(Notice)
	if len(n.observers) > 0 {
		observers = append(observers, n.observers...)
		n.timers = append(n.timers,
			n.after(VisibleFor, func() { n.fire(gen, Notice{Message: message, Phase: Hiding, Remaining: FadeFor}) }),
			n.after(VisibleFor+FadeFor, func() { n.fire(gen, Notice{Phase: Hidden}) }),
		)
	}
	n.mu.Unlock()

	notice := Notice{Message: message, Phase: Shown, Remaining: VisibleFor}
	for _, f := range observers {
		f(notice)
	}
}

// Current derives the notice from the clock.
func (n *Notifier) Current() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.shownAt.IsZero() {
		return Notice{Phase: Hidden}
	}

	elapsed := n.now().Sub(n.shownAt)
	switch {
	case elapsed < VisibleFor:
		return Notice{Message: n.message, Phase: Shown, Remaining: VisibleFor - elapsed}
	case elapsed < VisibleFor+FadeFor:
		return Notice{Message: n.message, Phase: Hiding, Remaining: VisibleFor + FadeFor - elapsed}
	default:
		return Notice{Phase: Hidden}
	}
}

// Subscribe registers f for phase changes. Callbacks run on timer goroutines.
func (n *Notifier) Subscribe(f func(Notice)) {
	n.mu.Lock()
	n.observers = append(n.observers, f)
	n.mu.Unlock()
}

// Stop cancels pending phase changes and hides the message.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopTimersLocked()
	n.gen++
	n.message = ""
	n.shownAt = time.Time{}
}

func (n *Notifier) fire(gen uint64, notice Notice) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	if notice.Phase == Hidden {
		n.timers = nil
	}
	observers := slices.Clone(n.observers)
	n.mu.Unlock()

	for _, f := range observers {
		f(notice)
	}
}

func (n *Notifier) stopTimersLocked() {
	for _, t := range n.timers {
		t.Stop()
	}
	n.timers = nil
}
