package app

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/beschikbaarheid/internal/selection"
	"github.com/klabast/wb-services/beschikbaarheid/internal/slot"
)

func testEntries() []selection.Entry {
	return []selection.Entry{
		{Key: "15 maart 2025", Slots: []slot.Slot{slot.Morning, slot.Evening}},
		{Key: "3 april 2025", Slots: []slot.Slot{slot.Afternoon}},
	}
}

func TestGenerateICS(t *testing.T) {
	w := httptest.NewRecorder()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := GenerateICS(w, testEntries(), 30, now); err != nil {
		t.Fatalf("GenerateICS() failed: %v", err)
	}

	resp := w.Result()
	body := w.Body.String()

	// Check content type
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", contentType)
	}

	// Check for required ICS structure
	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Beschikbaarheid//Tijdsloten//NL",
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
		"DTSTAMP:20250301T100000Z",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %s", field)
		}
	}

	// One timed event per slot
	if got := strings.Count(body, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("Expected 3 events, got %d", got)
	}
	wantLines := []string{
		"DTSTART;TZID=Europe/Amsterdam:20250315T080000",
		"DTEND;TZID=Europe/Amsterdam:20250315T120000",
		"DTSTART;TZID=Europe/Amsterdam:20250315T180000",
		"DTEND;TZID=Europe/Amsterdam:20250315T210000",
		"DTSTART;TZID=Europe/Amsterdam:20250403T120000",
		"DTEND;TZID=Europe/Amsterdam:20250403T180000",
		"UID:20250315-ochtend@beschikbaarheid",
		"UID:20250403-middag@beschikbaarheid",
		"SUMMARY:Beschikbaar (Avond)",
		"DESCRIPTION:Beschikbaar op zaterdag 15 maart 2025\\, 08:00 - 12:00",
	}
	for _, line := range wantLines {
		if !strings.Contains(body, line+"\r\n") {
			t.Errorf("ICS output missing line: %s", line)
		}
	}

	// Check for alarms
	if got := strings.Count(body, "BEGIN:VALARM"); got != 3 {
		t.Errorf("Expected 3 alarms, got %d", got)
	}
	if !strings.Contains(body, "TRIGGER:-P0DT0H30M") {
		t.Error("Alarm missing 30 minute trigger")
	}
}

func TestGenerateICSWithoutReminder(t *testing.T) {
	w := httptest.NewRecorder()
	if err := GenerateICS(w, testEntries(), 0, time.Now()); err != nil {
		t.Fatalf("GenerateICS() failed: %v", err)
	}
	if strings.Contains(w.Body.String(), "BEGIN:VALARM") {
		t.Error("No alarms expected without a reminder")
	}
}

func TestAddAlarm(t *testing.T) {
	tests := []struct {
		name          string
		minutesBefore int
		slotName      string
		wantTrigger   string
	}{
		{"15 minutes", 15, "Ochtend", "-P0DT0H15M"},
		{"2 hours", 120, "Middag", "-P0DT2H0M"},
		{"1 day and a half hour", 24*60 + 30, "Avond", "-P1DT0H30M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := AddAlarm(&buf, tt.minutesBefore, tt.slotName); err != nil {
				t.Fatalf("AddAlarm() failed: %v", err)
			}

			output := buf.String()

			// Check for alarm structure
			if !strings.Contains(output, "BEGIN:VALARM") {
				t.Error("Missing BEGIN:VALARM")
			}
			if !strings.Contains(output, "END:VALARM") {
				t.Error("Missing END:VALARM")
			}
			if !strings.Contains(output, "ACTION:DISPLAY") {
				t.Error("Missing ACTION:DISPLAY")
			}
			if !strings.Contains(output, "TRIGGER:"+tt.wantTrigger) {
				t.Errorf("Expected TRIGGER:%s, got output:\n%s", tt.wantTrigger, output)
			}
			if !strings.Contains(output, tt.slotName) {
				t.Errorf("Missing slot name: %s", tt.slotName)
			}
		})
	}
}

func TestGenerateCSV(t *testing.T) {
	w := httptest.NewRecorder()
	if err := GenerateCSV(w, testEntries()); err != nil {
		t.Fatalf("GenerateCSV() failed: %v", err)
	}

	resp := w.Result()
	body := w.Body.String()

	// Check content type
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/csv") {
		t.Errorf("Expected Content-Type text/csv, got %s", contentType)
	}

	want := "Datum,Dagdeel,Tijd\n" +
		"15 maart 2025,ochtend,08:00 - 12:00\n" +
		"15 maart 2025,avond,18:00 - 21:00\n" +
		"3 april 2025,middag,12:00 - 18:00\n"
	if body != want {
		t.Errorf("CSV output mismatch:\ngot:\n%s\nwant:\n%s", body, want)
	}
}

func TestGenerateJSON(t *testing.T) {
	w := httptest.NewRecorder()
	if err := GenerateJSON(w, testEntries()); err != nil {
		t.Fatalf("GenerateJSON() failed: %v", err)
	}

	resp := w.Result()
	body := w.Body.String()

	// Check content type
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	if !strings.Contains(body, `"count":3`) {
		t.Error("Missing count in JSON")
	}
	if !strings.Contains(body, `{"date":"15 maart 2025","slots":["ochtend","avond"]}`) {
		t.Errorf("Missing first entry in JSON: %s", body)
	}
}

func TestGenerateJSONEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	if err := GenerateJSON(w, nil); err != nil {
		t.Fatalf("GenerateJSON() failed: %v", err)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"count":0,"selections":[]}` {
		t.Errorf("Unexpected empty export: %s", got)
	}
}
