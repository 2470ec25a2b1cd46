package view

import (
	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
)

// View is everything a renderer needs to draw the widget. It is rebuilt from
// State after every event and holds no references into it.
type View struct {
	MonthLabel string          `json:"month_label"`
	Cursor     calendar.Cursor `json:"cursor"`
	Weekdays   []string        `json:"weekdays"`
	Cells      []Cell          `json:"cells"`
	Panel      Panel           `json:"panel"`
	Items      []Item          `json:"items"`
	Count      int             `json:"count"`
}

// Cell is a grid cell with its selection markers.
type Cell struct {
	calendar.Cell
	HasSlots bool `json:"has_slots,omitempty"`
	Selected bool `json:"selected,omitempty"`
	Today    bool `json:"today,omitempty"`
}

// Panel is the slot editor for the active date.
type Panel struct {
	Visible     bool     `json:"visible"`
	Header      string   `json:"header"`
	ActiveDate  string   `json:"active_date,omitempty"`
	ActiveLabel string   `json:"active_label,omitempty"`
	Options     []Option `json:"options"`
}

// Option is one slot checkbox. ID doubles as the checkbox id.
type Option struct {
	ID       slot.Slot `json:"id"`
	Name     string    `json:"name"`
	Range    string    `json:"range"`
	Checked  bool      `json:"checked"`
	Disabled bool      `json:"disabled"`
}

// Item is one row of the selected list.
type Item struct {
	Key       string    `json:"date"`
	Slot      slot.Slot `json:"slot"`
	DateLabel string    `json:"date_label"`
	SlotLabel string    `json:"slot_label"`
}
