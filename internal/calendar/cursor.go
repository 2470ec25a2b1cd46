package calendar

import (
	"fmt"
	"time"
)

// Cursor is the month currently shown in the grid.
type Cursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewCursor normalises year and month, so month 0 is December of the previous
// year and month 13 is January of the next one.
func NewCursor(year int, month time.Month) Cursor {
	return CursorAt(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC))
}

// CursorAt returns the cursor for the month containing t.
func CursorAt(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// ParseCursor reads "2006-01" notation.
func ParseCursor(s string) (Cursor, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Cursor{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return CursorAt(t), nil
}

// Add moves the cursor n months, rolling over year boundaries.
func (c Cursor) Add(n int) Cursor {
	return NewCursor(c.Year, c.Month+time.Month(n))
}

func (c Cursor) Next() Cursor { return c.Add(1) }
func (c Cursor) Prev() Cursor { return c.Add(-1) }

// First returns the first day of the month at noon UTC.
func (c Cursor) First() time.Time {
	return time.Date(c.Year, c.Month, 1, 12, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (c Cursor) Days() int {
	// Day 0 of the next month is the last day of this one
	return time.Date(c.Year, c.Month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls in the cursor's month.
func (c Cursor) Contains(t time.Time) bool {
	return t.Year() == c.Year && t.Month() == c.Month
}

// Label is the heading shown above the grid, e.g. "maart 2025".
func (c Cursor) Label() string {
	return fmt.Sprintf("%s %d", MonthName(c.Month), c.Year)
}

func (c Cursor) String() string {
	return c.First().Format("2006-01")
}
