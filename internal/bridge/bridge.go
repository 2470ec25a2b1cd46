// Package bridge exposes one widget through string-in, JSON-out calls for
// hosts that cannot share Go values, such as the browser build.
package bridge

import (
	"errors"
	"time"

	json "github.com/goccy/go-json"

	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
	"github.com/klabast/wb-services/beschikbaarheid/internal/notify"
	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
	"github.com/klabast/wb-services/beschikbaarheid/internal/view"
)

// Response is what every call returns, encoded as JSON.
type Response struct {
	View         view.View     `json:"view"`
	Notification notify.Notice `json:"notification"`
	Error        string        `json:"error,omitempty"`
}

type Bridge struct {
	widget   *view.Synchronizer
	notifier *notify.Notifier
}

// New starts a widget on start. Options are passed to the notifier.
func New(start calendar.Cursor, now func() time.Time, opts ...notify.Option) *Bridge {
	opts = append([]notify.Option{notify.WithClock(now)}, opts...)
	return &Bridge{
		widget:   view.New(start, view.WithToday(now)),
		notifier: notify.New(opts...),
	}
}

func (b *Bridge) View() string {
	return b.respond(b.widget.View(), nil)
}

func (b *Bridge) PrevMonth() string {
	return b.respond(b.widget.PrevMonth(), nil)
}

func (b *Bridge) NextMonth() string {
	return b.respond(b.widget.NextMonth(), nil)
}

func (b *Bridge) SelectDate(key string) string {
	return b.respond(b.widget.SelectDate(key))
}

func (b *Bridge) ToggleSlot(id string) string {
	sl, err := slot.Parse(id)
	if err != nil {
		return b.respond(b.widget.View(), err)
	}
	return b.respond(b.widget.ToggleSlot(sl))
}

func (b *Bridge) RemoveSelection(key, id string) string {
	sl, err := slot.Parse(id)
	if err != nil {
		return b.respond(b.widget.View(), err)
	}
	return b.respond(b.widget.Remove(key, sl), nil)
}

// OnNotify registers f for notification phase changes; f gets the notice
// as JSON.
func (b *Bridge) OnNotify(f func(string)) {
	b.notifier.Subscribe(func(n notify.Notice) {
		data, err := json.Marshal(n)
		if err != nil {
			return
		}
		f(string(data))
	})
}

func (b *Bridge) respond(v view.View, err error) string {
	resp := Response{View: v}
	if err != nil {
		if errors.Is(err, view.ErrNoActiveDate) {
			b.notifier.Show(view.MessageSelectDateFirst)
			resp.Error = view.MessageSelectDateFirst
		} else {
			resp.Error = err.Error()
		}
	}
	resp.Notification = b.notifier.Current()

	data, err := json.Marshal(resp)
	if err != nil {
		return `{"error":"encoding failed"}`
	}
	return string(data)
}
