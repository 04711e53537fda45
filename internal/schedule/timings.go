package schedule

import (
	"fmt"
	"regexp"
	"strconv"
)

// Segment is one working-hours block in 24-hour "HH:MM" form.
type Segment struct {
	Start string
	End   string
}

// defaultSegments covers doctors whose timings column is empty or
// unparseable: a morning and an afternoon block.
var defaultSegments = []Segment{
	{Start: "09:00", End: "12:00"},
	{Start: "14:00", End: "17:00"},
}

// timeRangeRE matches ranges like "9:00 AM - 12:00 PM" or "09:00-12:00".
var timeRangeRE = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{0,2})\s*(am|pm)?\s*[-–]\s*(\d{1,2}):?(\d{0,2})\s*(am|pm)?`)

// simpleRangeRE matches bare hour pairs like "9-12" or "2-5".
var simpleRangeRE = regexp.MustCompile(`(\d{1,2})\s*[-–]\s*(\d{1,2})`)

// ParseTimings converts a doctor's free-text schedule description into
// working-hour segments. Understood forms:
//
//	"9:00 AM - 12:00 PM, 2:00 PM - 5:00 PM"
//	"09:00-12:00, 14:00-17:00"
//	"9-12, 2-5" (small bare hours are read as afternoon)
//
// Anything else falls back to the default morning/afternoon blocks.
func ParseTimings(timings string) []Segment {
	if timings == "" {
		return defaultSegments
	}

	var segments []Segment
	for _, m := range timeRangeRE.FindAllStringSubmatch(timings, -1) {
		startHour, startMin := atoiDefault(m[1]), atoiDefault(m[2])
		endHour, endMin := atoiDefault(m[4]), atoiDefault(m[5])

		startHour = to24(startHour, m[3])
		endHour = to24(endHour, m[6])

		segments = append(segments, Segment{
			Start: fmt.Sprintf("%02d:%02d", startHour, startMin),
			End:   fmt.Sprintf("%02d:%02d", endHour, endMin),
		})
	}

	if len(segments) == 0 {
		for _, m := range simpleRangeRE.FindAllStringSubmatch(timings, -1) {
			startHour, endHour := atoiDefault(m[1]), atoiDefault(m[2])
			// Bare small hours like "2-5" mean afternoon.
			if startHour < 8 {
				startHour += 12
				endHour += 12
			}
			segments = append(segments, Segment{
				Start: fmt.Sprintf("%02d:00", startHour),
				End:   fmt.Sprintf("%02d:00", endHour),
			})
		}
	}

	if len(segments) == 0 {
		return defaultSegments
	}
	return segments
}

func to24(hour int, meridiem string) int {
	switch normalizeMeridiem(meridiem) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func normalizeMeridiem(s string) string {
	switch s {
	case "AM", "Am", "aM", "am":
		return "am"
	case "PM", "Pm", "pM", "pm":
		return "pm"
	}
	return ""
}

func atoiDefault(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
