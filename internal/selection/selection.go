// Package selection holds the date-key to slots map behind the widget.
//
// Dates iterate in the order they were first selected and slots within a
// date in the order they were added. A date that loses its last slot is
// dropped, so a present key always carries at least one slot.
package selection

import (
	"slices"

	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
)

// Entry is one selected date with its slots.
type Entry struct {
	Key   string      `json:"date"`
	Slots []slot.Slot `json:"slots"`
}

// Pair is a single (date, slot) selection.
type Pair struct {
	Key  string    `json:"date"`
	Slot slot.Slot `json:"slot"`
}

// Store is not safe for concurrent use.
type Store struct {
	order []string
	slots map[string][]slot.Slot
}

func New() *Store {
	return &Store{slots: make(map[string][]slot.Slot)}
}

// Add appends sl to the date's slots. It reports false when the pair was
// already present.
func (s *Store) Add(key string, sl slot.Slot) bool {
	current, ok := s.slots[key]
	if slices.Contains(current, sl) {
		return false
	}
	if !ok {
		s.order = append(s.order, key)
	}
	s.slots[key] = append(current, sl)
	return true
}

// Remove deletes the pair and drops the date when it has no slots left. It
// reports false when the pair was absent.
func (s *Store) Remove(key string, sl slot.Slot) bool {
	current, ok := s.slots[key]
	if !ok {
		return false
	}
	i := slices.Index(current, sl)
	if i < 0 {
		return false
	}

	remaining := slices.Delete(slices.Clone(current), i, i+1)
	if len(remaining) == 0 {
		delete(s.slots, key)
		s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == key })
		return true
	}
	s.slots[key] = remaining
	return true
}

// Has reports whether the date carries any slot.
func (s *Store) Has(key string) bool {
	_, ok := s.slots[key]
	return ok
}

func (s *Store) Contains(key string, sl slot.Slot) bool {
	return slices.Contains(s.slots[key], sl)
}

// Slots returns a copy of the date's slots in insertion order.
func (s *Store) Slots(key string) []slot.Slot {
	return slices.Clone(s.slots[key])
}

// Dates is the number of selected dates.
func (s *Store) Dates() int {
	return len(s.order)
}

// Count is the number of (date, slot) pairs. It is derived on every call.
func (s *Store) Count() int {
	n := 0
	for _, sl := range s.slots {
		n += len(sl)
	}
	return n
}

// Entries returns a copy of the map in iteration order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, Entry{Key: key, Slots: slices.Clone(s.slots[key])})
	}
	return out
}

// Pairs flattens the map, dates first then slots.
func (s *Store) Pairs() []Pair {
	out := make([]Pair, 0, s.Count())
	for _, key := range s.order {
		for _, sl := range s.slots[key] {
			out = append(out, Pair{Key: key, Slot: sl})
		}
	}
	return out
}
