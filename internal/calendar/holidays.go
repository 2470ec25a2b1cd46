package calendar

import (
	"time"
)

// Holidays returns the Dutch public holidays of year, keyed by date key.
func Holidays(year int) map[string]string {
	holidays := make(map[string]string)

	// Fixed holidays
	holidays[KeyOf(year, time.January, 1)] = "Nieuwjaarsdag"
	holidays[KeyOf(year, time.May, 5)] = "Bevrijdingsdag"
	holidays[KeyOf(year, time.December, 25)] = "Eerste Kerstdag"
	holidays[KeyOf(year, time.December, 26)] = "Tweede Kerstdag"

	// Koningsdag moves to the 26th when the 27th is a Sunday
	kingsDay := time.Date(year, time.April, 27, 12, 0, 0, 0, time.UTC)
	if kingsDay.Weekday() == time.Sunday {
		kingsDay = kingsDay.AddDate(0, 0, -1)
	}
	holidays[Key(kingsDay)] = "Koningsdag"

	// Easter-based holidays (movable)
	easter := calculateEaster(year)
	holidays[Key(easter.AddDate(0, 0, -2))] = "Goede Vrijdag"
	holidays[Key(easter)] = "Eerste Paasdag"
	holidays[Key(easter.AddDate(0, 0, 1))] = "Tweede Paasdag"
	holidays[Key(easter.AddDate(0, 0, 39))] = "Hemelvaartsdag"
	holidays[Key(easter.AddDate(0, 0, 49))] = "Eerste Pinksterdag"
	holidays[Key(easter.AddDate(0, 0, 50))] = "Tweede Pinksterdag"

	return holidays
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}
