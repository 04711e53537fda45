package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyamitra/health-chatbot/internal/directory"
	"github.com/arogyamitra/health-chatbot/internal/schedule"
)

func TestExtractPreferences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Preferences
	}{
		{
			name:  "city and department in one utterance",
			input: "I am in Kanpur and need a cardiologist",
			want:  Preferences{City: "Kanpur", Department: "Cardiologist"},
		},
		{
			name:  "synonym maps to canonical department",
			input: "my heart hurts",
			want:  Preferences{Department: "Cardiologist"},
		},
		{
			name:  "city is case insensitive",
			input: "i live in ORAI",
			want:  Preferences{City: "Orai"},
		},
		{
			name:  "doctor name after Dr.",
			input: "I want to see Dr. Mehta",
			want:  Preferences{DoctorName: "Mehta"},
		},
		{
			name:  "doctor name after the word doctor",
			input: "book doctor Asha Verma please",
			want:  Preferences{DoctorName: "Asha Verma please"},
		},
		{
			name:  "keyword declaration order breaks ties",
			input: "skin and bone trouble",
			want:  Preferences{Department: "Orthopedic"},
		},
		{
			name:  "nothing extracted",
			input: "hello there",
			want:  Preferences{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPreferences(tt.input))
		})
	}
}

func TestPreferencesMerge(t *testing.T) {
	base := Preferences{City: "Kanpur", Department: "Dentist"}
	merged := base.Merge(Preferences{Department: "Cardiologist"})
	assert.Equal(t, Preferences{City: "Kanpur", Department: "Cardiologist"}, merged)

	// Empty fields never erase earlier facts.
	assert.Equal(t, merged, merged.Merge(Preferences{}))
}

func sampleDoctors() []directory.Doctor {
	return []directory.Doctor{
		{ID: 11, Name: "Asha Verma", Department: "Cardiologist", Location: "Kanpur"},
		{ID: 22, Name: "R Gupta", Department: "Neurologist", Location: "Kanpur"},
		{ID: 33, Name: "S Khan", Department: "Dentist", Location: "Kanpur"},
	}
}

func TestSelectDoctor(t *testing.T) {
	doctors := sampleDoctors()

	id, ok := SelectDoctor("I'll go with Dr. Verma", doctors)
	require.True(t, ok)
	assert.Equal(t, int64(11), id)

	id, ok = SelectDoctor("the second one", doctors)
	require.True(t, ok)
	assert.Equal(t, int64(22), id)

	id, ok = SelectDoctor("number 3 looks good", doctors)
	require.True(t, ok)
	assert.Equal(t, int64(33), id)

	// Name match is checked before ordinals.
	id, ok = SelectDoctor("khan, the first name on my list at home", doctors)
	require.True(t, ok)
	assert.Equal(t, int64(33), id)

	_, ok = SelectDoctor("someone else entirely", doctors)
	assert.False(t, ok)
}

func TestDetectConfirmation(t *testing.T) {
	assert.True(t, DetectConfirmation("Yes, book it"))
	assert.True(t, DetectConfirmation("please proceed"))
	assert.False(t, DetectConfirmation("hmm let me think"))

	// Known false positive, kept deliberately: no negation handling.
	assert.True(t, DetectConfirmation("not ok"))
}

func sampleDays() []schedule.DaySlots {
	return []schedule.DaySlots{
		{
			Date: "2026-09-01", FormattedDate: "September 01, 2026", DayName: "Tuesday",
			Slots: []schedule.Slot{
				{Time: "09:00 AM", EndTime: "10:00 AM", Start24: "09:00", End24: "10:00"},
				{Time: "10:00 AM", EndTime: "11:00 AM", Start24: "10:00", End24: "11:00"},
			},
		},
		{
			Date: "2026-09-02", FormattedDate: "September 02, 2026", DayName: "Wednesday",
			Slots: []schedule.Slot{
				{Time: "02:00 PM", EndTime: "03:00 PM", Start24: "14:00", End24: "15:00"},
			},
		},
	}
}

func TestSelectSlot(t *testing.T) {
	days := sampleDays()

	// Method 1: date and time together.
	sel, ok := SelectSlot("Tuesday at 10 am works", days)
	require.True(t, ok)
	assert.Equal(t, "2026-09-01", sel.Date)
	assert.Equal(t, "10:00", sel.Start24)

	// Method 2: bare time against any slot.
	sel, ok = SelectSlot("can I come at 2pm?", days)
	require.True(t, ok)
	assert.Equal(t, "2026-09-02", sel.Date)
	assert.Equal(t, "14:00", sel.Start24)

	// Method 3: ordinal over the flattened list.
	sel, ok = SelectSlot("the third option", days)
	require.True(t, ok)
	assert.Equal(t, "2026-09-02", sel.Date)

	_, ok = SelectSlot("none of those", days)
	assert.False(t, ok)
}

func TestSelectSlotDatePlusTimeBeatsBareTime(t *testing.T) {
	// Both days have a 10:00 AM slot; naming the day picks the right one.
	days := []schedule.DaySlots{
		{
			Date: "2026-09-01", FormattedDate: "September 01, 2026", DayName: "Tuesday",
			Slots: []schedule.Slot{{Time: "10:00 AM", EndTime: "11:00 AM", Start24: "10:00", End24: "11:00"}},
		},
		{
			Date: "2026-09-02", FormattedDate: "September 02, 2026", DayName: "Wednesday",
			Slots: []schedule.Slot{{Time: "10:00 AM", EndTime: "11:00 AM", Start24: "10:00", End24: "11:00"}},
		},
	}

	sel, ok := SelectSlot("wednesday 10am please", days)
	require.True(t, ok)
	assert.Equal(t, "2026-09-02", sel.Date)
}
