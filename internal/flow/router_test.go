package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{"DIAGNOSIS", IntentDiagnosis},
		{"  appointment\n", IntentAppointment},
		{"Intent: SWITCH_TO_APPOINTMENT", IntentSwitchToAppointment},
		{"SWITCH_TO_DIAGNOSIS", IntentSwitchToDiagnosis},
		{"I am not sure", IntentUnclear},
		{"", IntentUnclear},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseIntent(tt.raw), "raw=%q", tt.raw)
	}
}

func TestRouteEstablishFromIntent(t *testing.T) {
	l := ledger.Ledger{}.WithTurn(ledger.RoleUser, "I have chest pain")

	d := Route(l, IntentDiagnosis, DiagnosisState{})
	assert.Equal(t, ledger.FlowDiagnosis, d.Target)
	assert.True(t, d.RecordFlow)

	d = Route(l, IntentAppointment, DiagnosisState{})
	assert.Equal(t, ledger.FlowAppointment, d.Target)
	assert.True(t, d.RecordFlow)
}

func TestRouteUnclearWithoutFlowClarifies(t *testing.T) {
	l := ledger.Ledger{}.WithTurn(ledger.RoleUser, "hello?")
	d := Route(l, IntentUnclear, DiagnosisState{})
	assert.True(t, d.Clarify)
}

func TestRouteActiveFlowContinues(t *testing.T) {
	l := ledger.Ledger{}.
		WithTurn(ledger.RoleUser, "I feel dizzy").
		WithMarker(ledger.MarkerFlow, string(ledger.FlowDiagnosis))

	// A plain appointment intent below the threshold does not pull the user
	// out of questioning.
	d := Route(l, IntentAppointment, DiagnosisState{QuestionsAsked: 2, Step: DiagnosisActive})
	assert.Equal(t, ledger.FlowDiagnosis, d.Target)
	assert.False(t, d.RecordFlow)

	d = Route(l, IntentUnclear, DiagnosisState{})
	assert.Equal(t, ledger.FlowDiagnosis, d.Target)
	assert.False(t, d.RecordFlow)
}

func TestRouteThresholdReroute(t *testing.T) {
	l := ledger.Ledger{}.
		WithMarker(ledger.MarkerFlow, string(ledger.FlowDiagnosis))

	diag := DiagnosisState{QuestionsAsked: 5, Step: DiagnosisSuggestReroute}
	d := Route(l, IntentAppointment, diag)
	assert.Equal(t, ledger.FlowAppointment, d.Target)
	assert.True(t, d.RecordFlow)

	// The threshold alone does not force a switch.
	d = Route(l, IntentUnclear, diag)
	assert.Equal(t, ledger.FlowDiagnosis, d.Target)
}

func TestRouteExplicitSwitchOverrides(t *testing.T) {
	l := ledger.Ledger{}.
		WithMarker(ledger.MarkerFlow, string(ledger.FlowDiagnosis))

	d := Route(l, IntentSwitchToAppointment, DiagnosisState{})
	assert.Equal(t, ledger.FlowAppointment, d.Target)
	assert.True(t, d.RecordFlow)

	// Switching to the flow already active must not stack another marker.
	d = Route(l, IntentSwitchToDiagnosis, DiagnosisState{})
	assert.Equal(t, ledger.FlowDiagnosis, d.Target)
	assert.False(t, d.RecordFlow)
}

func TestRouteLastFlowMarkerWins(t *testing.T) {
	l := ledger.Ledger{}.
		WithMarker(ledger.MarkerFlow, string(ledger.FlowDiagnosis)).
		WithTurn(ledger.RoleUser, "book me in instead").
		WithMarker(ledger.MarkerFlow, string(ledger.FlowAppointment))

	d := Route(l, IntentUnclear, DiagnosisState{})
	assert.Equal(t, ledger.FlowAppointment, d.Target)
}
