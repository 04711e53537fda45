// Package extract maps free-text user turns to structured candidate values:
// city, department, doctor name, doctor/slot selections, and confirmation
// intent. All functions are pure and deterministic.
package extract

import (
	"regexp"
	"strings"

	"github.com/arogyamitra/health-chatbot/internal/directory"
	"github.com/arogyamitra/health-chatbot/internal/schedule"
)

// Preferences holds the facts a single utterance may carry about where and
// with whom the user wants an appointment. Empty fields were not mentioned.
type Preferences struct {
	City       string `json:"city,omitempty"`
	Department string `json:"department,omitempty"`
	DoctorName string `json:"doctor_name,omitempty"`
}

// Merge overlays other onto p, field by field; the newer mention wins.
func (p Preferences) Merge(other Preferences) Preferences {
	if other.City != "" {
		p.City = other.City
	}
	if other.Department != "" {
		p.Department = other.Department
	}
	if other.DoctorName != "" {
		p.DoctorName = other.DoctorName
	}
	return p
}

// cities is the supported city gazetteer. First substring match wins.
var cities = []string{"Kanpur", "Orai", "Jhansi"}

// departmentKeyword maps a trigger keyword to its canonical department. The
// slice order is the tie-break: the first matching keyword in declaration
// order wins, regardless of where the keywords appear in the input.
var departmentKeywords = []struct {
	keyword    string
	department string
}{
	{"heart", "Cardiologist"},
	{"cardio", "Cardiologist"},
	{"cardiologist", "Cardiologist"},
	{"child", "Pediatrician"},
	{"pediatric", "Pediatrician"},
	{"pediatrician", "Pediatrician"},
	{"bone", "Orthopedic"},
	{"orthopedic", "Orthopedic"},
	{"ortho", "Orthopedic"},
	{"skin", "Dermatologist"},
	{"dermatologist", "Dermatologist"},
	{"ear", "ENT Specialist"},
	{"nose", "ENT Specialist"},
	{"throat", "ENT Specialist"},
	{"ent", "ENT Specialist"},
	{"brain", "Neurologist"},
	{"neurologist", "Neurologist"},
	{"neuro", "Neurologist"},
	{"mental", "Psychiatrist"},
	{"psychiatrist", "Psychiatrist"},
	{"psychology", "Psychiatrist"},
	{"teeth", "Dentist"},
	{"dental", "Dentist"},
	{"dentist", "Dentist"},
	{"general", "General Physician"},
	{"physician", "General Physician"},
	{"family", "General Physician"},
	{"women", "Gynecologist"},
	{"gynecologist", "Gynecologist"},
	{"gyno", "Gynecologist"},
}

// doctorNameREs capture the text following "Dr."/"Doctor". Free text like
// "doctor visit" can produce a noisy capture; that is a known false-positive
// risk of the pattern, surfaced to the search as an over-narrow name filter.
var doctorNameREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)dr\.?\s*([a-zA-Z][a-zA-Z ]*)`),
	regexp.MustCompile(`(?i)doctor\s+([a-zA-Z][a-zA-Z ]*)`),
}

// ExtractPreferences pulls city, department, and doctor-name mentions from a
// single utterance.
//
//	"I am in Kanpur and need a cardiologist" → {City: "Kanpur", Department: "Cardiologist"}
//	"book Dr. Mehta" → {DoctorName: "Mehta"}
func ExtractPreferences(text string) Preferences {
	lower := strings.ToLower(text)
	var prefs Preferences

	for _, city := range cities {
		if strings.Contains(lower, strings.ToLower(city)) {
			prefs.City = city
			break
		}
	}

	for _, dk := range departmentKeywords {
		if strings.Contains(lower, dk.keyword) {
			prefs.Department = dk.department
			break
		}
	}

	for _, re := range doctorNameREs {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			prefs.DoctorName = strings.TrimSpace(m[1])
			break
		}
	}

	return prefs
}

// ordinals maps position words to zero-based indexes into a displayed list.
// Declaration order is the tie-break.
var ordinals = []struct {
	word  string
	index int
}{
	{"first", 0}, {"1st", 0},
	{"second", 1}, {"2nd", 1},
	{"third", 2}, {"3rd", 2},
	{"fourth", 3}, {"4th", 3},
	{"fifth", 4}, {"5th", 4},
	{"1", 0}, {"2", 1}, {"3", 2}, {"4", 3}, {"5", 4},
}

// SelectDoctor resolves which of the displayed doctors the user chose.
// A literal name (or name token) match is checked before ordinals so a doctor
// whose name contains a digit is never shadowed by position words.
func SelectDoctor(text string, doctors []directory.Doctor) (int64, bool) {
	lower := strings.ToLower(text)

	for _, d := range doctors {
		name := strings.ToLower(d.Name)
		if strings.Contains(lower, name) {
			return d.ID, true
		}
		for _, part := range strings.Fields(name) {
			// Single-letter initials match almost anything; skip them.
			if len(part) < 2 {
				continue
			}
			if strings.Contains(lower, part) {
				return d.ID, true
			}
		}
	}

	for _, o := range ordinals {
		if strings.Contains(lower, o.word) && o.index < len(doctors) {
			return doctors[o.index].ID, true
		}
	}

	return 0, false
}

// ConfirmationPhrases are the affirmatives accepted by DetectConfirmation.
var ConfirmationPhrases = []string{
	"yes", "confirm", "book", "ok", "okay", "sure", "proceed", "go ahead", "done",
}

// DetectConfirmation reports whether the text contains an affirmative phrase.
// It is a pure substring OR with no negation handling: "not ok" confirms.
// That mirrors the agreed product behavior and is flagged as an open question
// rather than silently changed.
func DetectConfirmation(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range ConfirmationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// SelectSlot resolves which displayed slot the user chose. Match methods are
// tried in order and the first to produce a match wins:
//
//  1. a date phrase and a time phrase co-occurring in the text
//  2. a bare time phrase matched against any slot's display time
//  3. an ordinal position across the flattened, date-then-time-ordered list
func SelectSlot(text string, days []schedule.DaySlots) (schedule.SelectedSlot, bool) {
	lower := strings.ToLower(text)

	// Method 1: date + time together.
	for _, day := range days {
		if !dateMentioned(lower, day) {
			continue
		}
		for _, slot := range day.Slots {
			if timeMentioned(lower, slot) {
				return schedule.Select(day, slot), true
			}
		}
	}

	// Method 2: time alone.
	for _, day := range days {
		for _, slot := range day.Slots {
			if timeMentioned(lower, slot) {
				return schedule.Select(day, slot), true
			}
		}
	}

	// Method 3: ordinal over the flattened list.
	var flat []schedule.SelectedSlot
	for _, day := range days {
		for _, slot := range day.Slots {
			flat = append(flat, schedule.Select(day, slot))
		}
	}
	for _, o := range ordinals {
		if strings.Contains(lower, o.word) && o.index < len(flat) {
			return flat[o.index], true
		}
	}

	return schedule.SelectedSlot{}, false
}

func dateMentioned(lower string, day schedule.DaySlots) bool {
	candidates := []string{
		strings.ToLower(day.DayName),
		strings.ToLower(day.FormattedDate),
		day.Date,
	}
	// "September 02" without the year, and without the zero padding.
	if parts := strings.SplitN(strings.ToLower(day.FormattedDate), ",", 2); len(parts) == 2 {
		monthDay := strings.TrimSpace(parts[0])
		candidates = append(candidates, monthDay)
		candidates = append(candidates, strings.ReplaceAll(monthDay, " 0", " "))
	}
	for _, c := range candidates {
		if c != "" && strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

func timeMentioned(lower string, slot schedule.Slot) bool {
	for _, c := range timeVariants(slot) {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// timeVariants enumerates the spellings a user may plausibly type for a
// slot's start time: "09:00 am", "9:00 am", "9 am", "9am", "09:00", "9:00".
func timeVariants(slot schedule.Slot) []string {
	display := strings.ToLower(slot.Time) // "09:00 am"
	variants := []string{display}

	trimmed := strings.TrimPrefix(display, "0") // "9:00 am"
	if trimmed != display {
		variants = append(variants, trimmed)
	}
	if fields := strings.SplitN(trimmed, ":", 2); len(fields) == 2 {
		rest := strings.SplitN(fields[1], " ", 2)
		if len(rest) == 2 && rest[0] == "00" {
			variants = append(variants, fields[0]+" "+rest[1]) // "9 am"
			variants = append(variants, fields[0]+rest[1])     // "9am"
		}
	}

	variants = append(variants, slot.Start24) // "09:00"
	if t := strings.TrimPrefix(slot.Start24, "0"); t != slot.Start24 {
		variants = append(variants, t)
	}
	return variants
}
