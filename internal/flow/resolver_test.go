package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
)

func question(n string) string {
	return "Question " + n + ": where does it hurt?\nA. Head\nB. Chest\nC. Abdomen\nD. Back"
}

func TestResolveDiagnosisState(t *testing.T) {
	var l ledger.Ledger
	l = l.WithTurn(ledger.RoleUser, "I have a headache")
	l = l.WithTurn(ledger.RoleAssistant, question("1"))
	l = l.WithTurn(ledger.RoleUser, "A")
	l = l.WithTurn(ledger.RoleAssistant, "Thanks, noted.")
	l = l.WithTurn(ledger.RoleAssistant, question("2"))

	state := ResolveDiagnosisState(l, 5)
	assert.Equal(t, 2, state.QuestionsAsked)
	assert.Equal(t, DiagnosisActive, state.Step)
}

func TestResolveDiagnosisStateReroute(t *testing.T) {
	var l ledger.Ledger
	for i := 0; i < 5; i++ {
		l = l.WithTurn(ledger.RoleAssistant, question("x"))
	}
	state := ResolveDiagnosisState(l, 5)
	assert.Equal(t, 5, state.QuestionsAsked)
	assert.Equal(t, DiagnosisSuggestReroute, state.Step)
}

func TestResolveDiagnosisStateIgnoresUserOptions(t *testing.T) {
	var l ledger.Ledger
	// A user pasting option letters back must not count as a question.
	l = l.WithTurn(ledger.RoleUser, "a. b. c. d.")
	state := ResolveDiagnosisState(l, 5)
	assert.Equal(t, 0, state.QuestionsAsked)
}

func TestResolveCollectionStateSteps(t *testing.T) {
	var l ledger.Ledger

	state := ResolveCollectionState(l, "I want to book an appointment")
	assert.Equal(t, NeedsCity, state.Step)

	l = l.WithTurn(ledger.RoleUser, "I want to book an appointment")
	l = l.WithTurn(ledger.RoleAssistant, "Which city are you in?")
	state = ResolveCollectionState(l, "I am in Kanpur")
	assert.Equal(t, NeedsPreference, state.Step)
	assert.Equal(t, "Kanpur", state.City)

	l = l.WithTurn(ledger.RoleUser, "I am in Kanpur")
	state = ResolveCollectionState(l, "something for my heart")
	assert.Equal(t, ReadyToSearch, state.Step)
	assert.Equal(t, "Kanpur", state.City)
	assert.Equal(t, "Cardiologist", state.Department)
}

func TestResolveCollectionStateLatestWins(t *testing.T) {
	var l ledger.Ledger
	l = l.WithTurn(ledger.RoleUser, "I am in Kanpur and need a skin doctor")
	state := ResolveCollectionState(l, "actually make that Jhansi")
	assert.Equal(t, "Jhansi", state.City)
	assert.Equal(t, "Dermatologist", state.Department)
}

func TestResolveCollectionStateSkipsSystemTurns(t *testing.T) {
	var l ledger.Ledger
	l = l.WithMarker(ledger.MarkerFlow, "appointment")
	l = l.WithTurn(ledger.RoleUser, "kanpur please")
	state := ResolveCollectionState(l, "")
	assert.Equal(t, "Kanpur", state.City)
}

func TestResolveBookingStateSteps(t *testing.T) {
	var l ledger.Ledger
	assert.Equal(t, DoctorSelection, ResolveBookingState(l).Step)

	l = l.WithMarker(ledger.MarkerDoctor, "4")
	state := ResolveBookingState(l)
	assert.Equal(t, SlotSelection, state.Step)
	assert.Equal(t, int64(4), state.DoctorID)

	l = l.WithMarker(ledger.MarkerSlot, `{"date":"2026-08-31","time":"09:00 AM","end_time":"10:00 AM","start_24h":"09:00","end_24h":"10:00","formatted_date":"August 31, 2026","day_name":"Monday"}`)
	state = ResolveBookingState(l)
	assert.Equal(t, Confirmation, state.Step)
	require.NotNil(t, state.Slot)
	assert.Equal(t, "2026-08-31", state.Slot.Date)
	assert.Equal(t, "09:00", state.Slot.Start24)
}

func TestResolveBookingStateLastMarkerWins(t *testing.T) {
	var l ledger.Ledger
	l = l.WithMarker(ledger.MarkerDoctor, "1")
	l = l.WithMarker(ledger.MarkerDoctor, "7")
	assert.Equal(t, int64(7), ResolveBookingState(l).DoctorID)
}

func TestResolveBookingStateCorruptMarkers(t *testing.T) {
	var l ledger.Ledger
	l = l.WithMarker(ledger.MarkerDoctor, "not-a-number")
	state := ResolveBookingState(l)
	assert.Equal(t, DoctorSelection, state.Step)

	l = ledger.Ledger{}
	l = l.WithMarker(ledger.MarkerDoctor, "3")
	l = l.WithMarker(ledger.MarkerSlot, "{broken json")
	state = ResolveBookingState(l)
	assert.Equal(t, SlotSelection, state.Step)
	assert.Nil(t, state.Slot)
}
