// Package slot defines the closed set of availability slots a day can carry.
package slot

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnknown is returned when a string does not name one of the fixed slots.
var ErrUnknown = errors.New("unknown slot")

// Slot identifies one availability category of a day.
type Slot string

const (
	Morning   Slot = "ochtend"
	Afternoon Slot = "middag"
	Evening   Slot = "avond"
)

// All lists the slots in display order.
var All = []Slot{Morning, Afternoon, Evening}

// TimeRange is the wall-clock span a slot covers, in "HH:MM" notation.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r TimeRange) String() string {
	return r.Start + " - " + r.End
}

var timeRanges = map[Slot]TimeRange{
	Morning:   {Start: "08:00", End: "12:00"},
	Afternoon: {Start: "12:00", End: "18:00"},
	Evening:   {Start: "18:00", End: "21:00"},
}

// Parse validates s against the fixed slot set.
func Parse(s string) (Slot, error) {
	sl := Slot(strings.TrimSpace(s))
	if !sl.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return sl, nil
}

// Valid reports whether s is one of the fixed slots.
func (s Slot) Valid() bool {
	_, ok := timeRanges[s]
	return ok
}

// Range returns the time range of the slot. Unknown slots yield the zero value.
func (s Slot) Range() TimeRange {
	return timeRanges[s]
}

// Name is the identifier with its first letter upper-cased ("Ochtend").
func (s Slot) Name() string {
	return capitalize(string(s))
}

// Label combines name and time range, e.g. "Ochtend: 08:00 - 12:00".
func (s Slot) Label() string {
	return s.Name() + ": " + s.Range().String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
