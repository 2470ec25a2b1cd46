// Package view keeps the calendar grid, the slot checkboxes and the list of
// selections consistent with one selection map.
package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
	"github.com/klabast/wb-services/beschikbaarheid/internal/selection"
	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
)

const (
	HeaderIdle   = "Selecteer eerst een datum om tijden te kiezen"
	HeaderActive = "Selecteer beschikbare tijden"

	// MessageSelectDateFirst is shown when a slot is clicked before a date.
	MessageSelectDateFirst = "Selecteer eerst een datum"
)

// ErrNoActiveDate is returned by slot operations before a date was selected.
var ErrNoActiveDate = errors.New("no active date")

// State is the whole mutable state of one widget instance.
type State struct {
	Cursor    calendar.Cursor
	Active    string
	Selection *selection.Store
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithToday sets the clock used to flag today's cell.
func WithToday(now func() time.Time) SyncOption {
	return func(s *Synchronizer) { s.today = now }
}

// Synchronizer owns a State and applies UI events to it. Every event returns
// the freshly derived View. It is not safe for concurrent use; callers
// serialize events per instance.
type Synchronizer struct {
	state State
	today func() time.Time
}

func New(start calendar.Cursor, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		state: State{
			Cursor:    start,
			Selection: selection.New(),
		},
		today: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cursor returns the month on display.
func (s *Synchronizer) Cursor() calendar.Cursor {
	return s.state.Cursor
}

// Active returns the date being edited, or "" before the first selection.
func (s *Synchronizer) Active() string {
	return s.state.Active
}

// Entries returns a copy of the selection map.
func (s *Synchronizer) Entries() []selection.Entry {
	return s.state.Selection.Entries()
}

func (s *Synchronizer) Count() int {
	return s.state.Selection.Count()
}

func (s *Synchronizer) PrevMonth() View {
	s.state.Cursor = s.state.Cursor.Prev()
	return s.View()
}

func (s *Synchronizer) NextMonth() View {
	s.state.Cursor = s.state.Cursor.Next()
	return s.View()
}

// SelectDate makes key the active date.
func (s *Synchronizer) SelectDate(key string) (View, error) {
	t, err := calendar.ParseKey(key)
	if err != nil {
		return s.View(), err
	}
	s.state.Active = calendar.Key(t)
	return s.View(), nil
}

// ToggleSlot flips sl for the active date.
func (s *Synchronizer) ToggleSlot(sl slot.Slot) (View, error) {
	if s.state.Active == "" {
		return s.View(), ErrNoActiveDate
	}
	return s.SetSlot(sl, !s.state.Selection.Contains(s.state.Active, sl))
}

// SetSlot turns sl on or off for the active date. Turning on a present slot
// or off an absent one changes nothing.
func (s *Synchronizer) SetSlot(sl slot.Slot, on bool) (View, error) {
	if !sl.Valid() {
		return s.View(), fmt.Errorf("%w: %q", slot.ErrUnknown, sl)
	}
	if s.state.Active == "" {
		return s.View(), ErrNoActiveDate
	}

	if on {
		s.state.Selection.Add(s.state.Active, sl)
	} else {
		s.state.Selection.Remove(s.state.Active, sl)
	}
	return s.View(), nil
}

// Remove deletes one pair from the list, whatever the active date is.
// Absent pairs are ignored.
func (s *Synchronizer) Remove(key string, sl slot.Slot) View {
	if t, err := calendar.ParseKey(key); err == nil {
		s.state.Selection.Remove(calendar.Key(t), sl)
	}
	return s.View()
}

// View derives the presentation from the current state.
func (s *Synchronizer) View() View {
	st := s.state
	grid := calendar.NewGrid(st.Cursor)
	todayKey := calendar.Key(s.today())

	cells := make([]Cell, 0, len(grid.Cells))
	for _, c := range grid.Cells {
		cell := Cell{Cell: c}
		if !c.Blank {
			cell.HasSlots = st.Selection.Has(c.Key)
			cell.Selected = c.Key == st.Active
			cell.Today = c.Key == todayKey
		}
		cells = append(cells, cell)
	}

	panel := Panel{Header: HeaderIdle}
	if st.Active != "" {
		panel.Visible = true
		panel.Header = HeaderActive
		panel.ActiveDate = st.Active
		panel.ActiveLabel = displayLabel(st.Active)
	}
	for _, sl := range slot.All {
		panel.Options = append(panel.Options, Option{
			ID:       sl,
			Name:     sl.Name(),
			Range:    sl.Range().String(),
			Checked:  st.Active != "" && st.Selection.Contains(st.Active, sl),
			Disabled: st.Active == "",
		})
	}

	pairs := st.Selection.Pairs()
	items := make([]Item, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, Item{
			Key:       p.Key,
			Slot:      p.Slot,
			DateLabel: displayLabel(p.Key),
			SlotLabel: p.Slot.Label(),
		})
	}

	return View{
		MonthLabel: grid.Label,
		Cursor:     grid.Cursor,
		Weekdays:   calendar.Weekdays(),
		Cells:      cells,
		Panel:      panel,
		Items:      items,
		Count:      len(pairs),
	}
}

func displayLabel(key string) string {
	label, err := calendar.DisplayKey(key)
	if err != nil {
		return key
	}
	return label
}
