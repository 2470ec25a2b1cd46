package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
	"github.com/klabast/wb-services/beschikbaarheid/internal/selection"
	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
)

const exportBaseName = "beschikbaarheid"

// icsWriter writes CRLF-terminated lines and remembers the first error.
type icsWriter struct {
	w   io.Writer
	err error
}

func (iw *icsWriter) line(format string, args ...any) {
	if iw.err != nil {
		return
	}
	_, iw.err = fmt.Fprintf(iw.w, format+"\r\n", args...)
}

// GenerateICS writes one timed event per selected slot. reminderMinutes > 0
// adds a display alarm that many minutes before each slot starts.
func GenerateICS(w http.ResponseWriter, entries []selection.Entry, reminderMinutes int, now time.Time) error {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ics", exportBaseName))

	iw := &icsWriter{w: w}

	// ICS header
	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:%s", ICSProductID)
	iw.line("X-WR-CALNAME:Beschikbaarheid")
	iw.line("X-WR-TIMEZONE:%s", ICSTimezone)
	iw.line("CALSCALE:GREGORIAN")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, entry := range entries {
		date, err := calendar.ParseKey(entry.Key)
		if err != nil {
			continue
		}
		label, _ := calendar.DisplayKey(entry.Key)

		for _, sl := range entry.Slots {
			r := sl.Range()
			iw.line("BEGIN:VEVENT")
			iw.line("UID:%s", eventUID(date, sl))
			iw.line("DTSTAMP:%s", stamp)
			iw.line("DTSTART;TZID=%s:%s", ICSTimezone, icsLocalTime(date, r.Start))
			iw.line("DTEND;TZID=%s:%s", ICSTimezone, icsLocalTime(date, r.End))
			iw.line("SUMMARY:Beschikbaar (%s)", sl.Name())
			iw.line("DESCRIPTION:Beschikbaar op %s\\, %s", label, r)
			if reminderMinutes > 0 && iw.err == nil {
				iw.err = AddAlarm(w, reminderMinutes, sl.Name())
			}
			iw.line("END:VEVENT")
		}
	}

	iw.line("END:VCALENDAR")
	return iw.err
}

// AddAlarm adds a display alarm firing minutesBefore the event start.
func AddAlarm(w io.Writer, minutesBefore int, name string) error {
	iw := &icsWriter{w: w}

	days := minutesBefore / (24 * 60)
	remaining := minutesBefore % (24 * 60)
	hours := remaining / 60
	minutes := remaining % 60

	iw.line("BEGIN:VALARM")
	iw.line("ACTION:DISPLAY")
	iw.line("DESCRIPTION:Herinnering: beschikbaar (%s)", name)
	iw.line("TRIGGER:-P%dDT%dH%dM", days, hours, minutes)
	iw.line("END:VALARM")
	return iw.err
}

// eventUID is stable per (date, slot) so re-imports update instead of duplicate.
func eventUID(date time.Time, sl slot.Slot) string {
	return fmt.Sprintf("%s-%s@%s", date.Format("20060102"), sl, ICSUIDDomain)
}

// icsLocalTime turns a date and "HH:MM" into floating ICS local time.
func icsLocalTime(date time.Time, hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date.Format("20060102") + "T000000"
	}
	return fmt.Sprintf("%sT%02d%02d00", date.Format("20060102"), t.Hour(), t.Minute())
}

// GenerateCSV writes one row per selected slot.
func GenerateCSV(w http.ResponseWriter, entries []selection.Entry) error {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", exportBaseName))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Datum", "Dagdeel", "Tijd"}); err != nil {
		return err
	}
	for _, entry := range entries {
		for _, sl := range entry.Slots {
			if err := cw.Write([]string{entry.Key, string(sl), sl.Range().String()}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonExport struct {
	Count      int               `json:"count"`
	Selections []selection.Entry `json:"selections"`
}

// GenerateJSON writes the selection map in iteration order.
func GenerateJSON(w http.ResponseWriter, entries []selection.Entry) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", exportBaseName))

	count := 0
	for _, e := range entries {
		count += len(e.Slots)
	}
	if entries == nil {
		entries = []selection.Entry{}
	}
	return json.NewEncoder(w).Encode(jsonExport{Count: count, Selections: entries})
}

// export dispatches on format and logs write failures; headers are already
// out by then so there is nothing left to tell the client.
func (a *App) export(w http.ResponseWriter, format string, reminderMinutes int, entries []selection.Entry) bool {
	var err error
	switch format {
	case "ics":
		err = GenerateICS(w, entries, reminderMinutes, a.now())
	case "csv":
		err = GenerateCSV(w, entries)
	case "json":
		err = GenerateJSON(w, entries)
	default:
		return false
	}
	if err != nil {
		a.Logger.Error("writing export", zap.String("format", format), zap.Error(err))
	}
	return true
}
