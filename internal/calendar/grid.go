package calendar

import "time"

// Cell is one square of the month grid. Blank cells only pad the first week.
type Cell struct {
	Blank   bool   `json:"blank"`
	Day     int    `json:"day,omitempty"`
	Key     string `json:"key,omitempty"`
	Holiday string `json:"holiday,omitempty"`
}

// Grid lays out the cursor's month with weeks starting on Monday.
type Grid struct {
	Cursor Cursor `json:"cursor"`
	Label  string `json:"label"`
	Cells  []Cell `json:"cells"`
}

// LeadingBlanks is the number of filler cells before day 1. Sunday counts as
// the seventh weekday, not the zeroth.
func LeadingBlanks(c Cursor) int {
	return (int(c.First().Weekday()) + 6) % 7
}

// NewGrid builds the cells for c, including holiday names.
func NewGrid(c Cursor) Grid {
	gap := LeadingBlanks(c)
	days := c.Days()
	holidays := Holidays(c.Year)

	cells := make([]Cell, 0, gap+days)
	for i := 0; i < gap; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for day := 1; day <= days; day++ {
		key := KeyOf(c.Year, c.Month, day)
		cells = append(cells, Cell{
			Day:     day,
			Key:     key,
			Holiday: holidays[key],
		})
	}

	return Grid{
		Cursor: c,
		Label:  c.Label(),
		Cells:  cells,
	}
}

// Weekdays returns the column headers, Monday first.
func Weekdays() []string {
	out := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		out = append(out, WeekdayName(time.Weekday(i%7)))
	}
	return out
}
