// Package flow derives the discrete conversation state from the ledger and
// decides which flow handles each turn. Resolution is a pure scan over the
// ledger: calling a resolver twice without appending a turn yields the same
// result, which keeps every pipeline resumable across process restarts.
package flow

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/arogyamitra/health-chatbot/internal/extract"
	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/internal/schedule"
)

// DefaultQuestionThreshold is the diagnosis question cutoff after which the
// user is nudged toward booking.
const DefaultQuestionThreshold = 5

// DiagnosisStep is the diagnosis pipeline's derived step.
type DiagnosisStep int

const (
	DiagnosisActive DiagnosisStep = iota
	DiagnosisSuggestReroute
)

// DiagnosisState reports how far the questioning loop has progressed.
type DiagnosisState struct {
	QuestionsAsked int
	Step           DiagnosisStep
}

// ResolveDiagnosisState counts the multiple-choice questions already asked.
// An assistant turn counts as a question when it carries all four option
// markers (A./B./C./D.).
func ResolveDiagnosisState(l ledger.Ledger, threshold int) DiagnosisState {
	if threshold <= 0 {
		threshold = DefaultQuestionThreshold
	}
	asked := 0
	for _, t := range l {
		if t.Role != ledger.RoleAssistant {
			continue
		}
		content := strings.ToLower(t.Content)
		if strings.Contains(content, "a.") && strings.Contains(content, "b.") &&
			strings.Contains(content, "c.") && strings.Contains(content, "d.") {
			asked++
		}
	}
	state := DiagnosisState{QuestionsAsked: asked, Step: DiagnosisActive}
	if asked >= threshold {
		state.Step = DiagnosisSuggestReroute
	}
	return state
}

// CollectionStep is the appointment location-collection step.
type CollectionStep int

const (
	NeedsCity CollectionStep = iota
	NeedsPreference
	ReadyToSearch
)

// CollectionState is the re-derived appointment search criteria.
type CollectionState struct {
	extract.Preferences
	Step CollectionStep
}

// ResolveCollectionState re-scans the whole ledger for city/department/doctor
// mentions, then overlays facts from the latest user text so the user can
// correct an earlier answer (latest mention wins per field).
func ResolveCollectionState(l ledger.Ledger, latestUserText string) CollectionState {
	var prefs extract.Preferences
	for _, t := range l {
		if t.Role == ledger.RoleSystem {
			continue
		}
		prefs = prefs.Merge(extract.ExtractPreferences(t.Content))
	}
	prefs = prefs.Merge(extract.ExtractPreferences(latestUserText))

	state := CollectionState{Preferences: prefs}
	switch {
	case prefs.City == "":
		state.Step = NeedsCity
	case prefs.Department == "" && prefs.DoctorName == "":
		state.Step = NeedsPreference
	default:
		state.Step = ReadyToSearch
	}
	return state
}

// BookingStep is the appointment booking step past the doctor search.
type BookingStep int

const (
	DoctorSelection BookingStep = iota
	SlotSelection
	Confirmation
)

// BookingState is derived from the most recent doctor and slot markers.
type BookingState struct {
	Step     BookingStep
	DoctorID int64
	Slot     *schedule.SelectedSlot
}

// ResolveBookingState reads the latest selected_doctor_id and selected_slot
// markers. A corrupt marker value is treated as unset rather than failing the
// turn.
func ResolveBookingState(l ledger.Ledger) BookingState {
	var state BookingState

	if v, ok := l.LastMarker(ledger.MarkerDoctor); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			state.DoctorID = id
		}
	}
	if v, ok := l.LastMarker(ledger.MarkerSlot); ok {
		var slot schedule.SelectedSlot
		if err := json.Unmarshal([]byte(v), &slot); err == nil && slot.Date != "" {
			state.Slot = &slot
		}
	}

	switch {
	case state.DoctorID == 0:
		state.Step = DoctorSelection
	case state.Slot == nil:
		state.Step = SlotSelection
	default:
		state.Step = Confirmation
	}
	return state
}
