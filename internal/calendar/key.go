package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidKey is returned for strings that are not "<day> <month-name> <year>".
var ErrInvalidKey = errors.New("invalid date key")

// Key formats t as a date key, e.g. "15 maart 2025".
func Key(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), MonthName(t.Month()), t.Year())
}

// KeyOf formats the given calendar day. Out-of-range values are normalised
// the way time.Date does.
func KeyOf(year int, month time.Month, day int) string {
	return Key(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// ParseKey turns a date key back into a date at noon UTC.
func ParseKey(key string) (time.Time, error) {
	fields := strings.Fields(key)
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: bad day", ErrInvalidKey, key)
	}
	month, ok := monthFromName(fields[1])
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q: bad month", ErrInvalidKey, key)
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: bad year", ErrInvalidKey, key)
	}

	// Use noon to avoid timezone issues when shifting days
	t := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("%w: %q: no such day", ErrInvalidKey, key)
	}
	// One spelling per day: no padding, signs or extra spaces
	if Key(t) != key {
		return time.Time{}, fmt.Errorf("%w: %q: not in canonical form", ErrInvalidKey, key)
	}
	return t, nil
}

// DisplayKey prefixes a date key with its weekday, e.g. "zaterdag 15 maart 2025".
func DisplayKey(key string) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return WeekdayName(t.Weekday()) + " " + Key(t), nil
}
