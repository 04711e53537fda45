// Package schedule generates candidate appointment slots for a doctor from
// their free-text working-hours description and the busy intervals recorded in
// the database. Slots are generated, not stored, until booked.
package schedule

import (
	"time"
)

// Slot is a single candidate appointment unit within a day.
type Slot struct {
	Time    string `json:"time"`      // display, e.g. "09:00 AM"
	EndTime string `json:"end_time"`  // display
	Start24 string `json:"start_24h"` // "09:00"
	End24   string `json:"end_24h"`   // "10:00"
}

// DaySlots groups the free slots of one calendar day.
type DaySlots struct {
	Date          string `json:"date"`           // "2026-09-02"
	FormattedDate string `json:"formatted_date"` // "September 02, 2026"
	DayName       string `json:"day_name"`       // "Wednesday"
	Slots         []Slot `json:"slots"`
}

// SelectedSlot is a flattened day+slot pair; its JSON form is the payload of
// the selected_slot ledger marker.
type SelectedSlot struct {
	Date          string `json:"date"`
	FormattedDate string `json:"formatted_date"`
	DayName       string `json:"day_name"`
	Time          string `json:"time"`
	EndTime       string `json:"end_time"`
	Start24       string `json:"start_24h"`
	End24         string `json:"end_24h"`
}

// Select flattens a day and one of its slots into a SelectedSlot.
func Select(day DaySlots, slot Slot) SelectedSlot {
	return SelectedSlot{
		Date:          day.Date,
		FormattedDate: day.FormattedDate,
		DayName:       day.DayName,
		Time:          slot.Time,
		EndTime:       slot.EndTime,
		Start24:       slot.Start24,
		End24:         slot.End24,
	}
}

// BusyInterval is a repository-reported range during which the doctor is
// unavailable. Times are 24-hour "HH:MM" strings; the interval is half-open
// [Start, End).
type BusyInterval struct {
	Date  string
	Start string
	End   string
}

const (
	displayTimeLayout = "03:04 PM"
	time24Layout      = "15:04"
	dateLayout        = "2006-01-02"
	formattedLayout   = "January 02, 2006"
)

// closedDay is the fixed weekly day with no appointments.
const closedDay = time.Sunday

// slotDuration is the length of every generated candidate slot.
const slotDuration = time.Hour

// Generate produces the free hourly slots for the next daysAhead days,
// starting tomorrow, excluding the weekly closed day and any candidate that
// overlaps a busy interval. Days with no free slot are omitted.
func Generate(timings string, busy []BusyInterval, now time.Time, daysAhead int) []DaySlots {
	segments := ParseTimings(timings)

	busyByDate := make(map[string][]BusyInterval)
	for _, b := range busy {
		busyByDate[b.Date] = append(busyByDate[b.Date], b)
	}

	var days []DaySlots
	for offset := 1; offset <= daysAhead; offset++ {
		date := now.AddDate(0, 0, offset)
		if date.Weekday() == closedDay {
			continue
		}

		dateStr := date.Format(dateLayout)
		day := DaySlots{
			Date:          dateStr,
			FormattedDate: date.Format(formattedLayout),
			DayName:       date.Weekday().String(),
		}

		for _, seg := range segments {
			start := minutesOf(seg.Start)
			end := minutesOf(seg.End)
			for cur := start; cur < end; {
				next := cur + int(slotDuration.Minutes())
				if next > end {
					next = end
				}
				if !overlapsAny(cur, next, busyByDate[dateStr]) {
					day.Slots = append(day.Slots, Slot{
						Time:    formatDisplay(cur),
						EndTime: formatDisplay(next),
						Start24: format24(cur),
						End24:   format24(next),
					})
				}
				cur = next
			}
		}

		if len(day.Slots) > 0 {
			days = append(days, day)
		}
	}
	return days
}

// overlapsAny applies the half-open interval intersection test: a candidate
// [s,e) is busy if any busy interval [bs,be) satisfies s<be && e>bs.
func overlapsAny(s, e int, busy []BusyInterval) bool {
	for _, b := range busy {
		bs := minutesOf(b.Start)
		be := minutesOf(b.End)
		if s < be && e > bs {
			return true
		}
	}
	return false
}

// minutesOf converts "HH:MM" (or "HH:MM:SS") to minutes since midnight.
// Malformed input yields 0.
func minutesOf(hhmm string) int {
	if len(hhmm) > 5 {
		hhmm = hhmm[:5]
	}
	t, err := time.Parse(time24Layout, hhmm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

func formatDisplay(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(displayTimeLayout)
}

func format24(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(time24Layout)
}
