package calendar

import "time"

var monthNames = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

// Indexed by time.Weekday, so Sunday comes first.
var weekdayNames = [...]string{
	"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag",
}

// MonthName returns the lowercase Dutch name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// WeekdayName returns the lowercase Dutch name of d.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

func monthFromName(name string) (time.Month, bool) {
	for i, n := range monthNames {
		if n == name {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}
