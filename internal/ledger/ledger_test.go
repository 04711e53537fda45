package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMarker(t *testing.T) {
	tests := []struct {
		name     string
		turn     Turn
		wantKind MarkerKind
		wantVal  string
		wantOK   bool
	}{
		{
			name:     "flow marker",
			turn:     Turn{Role: RoleSystem, Content: "selected_flow: appointment"},
			wantKind: MarkerFlow,
			wantVal:  "appointment",
			wantOK:   true,
		},
		{
			name:     "doctor marker",
			turn:     Turn{Role: RoleSystem, Content: "selected_doctor_id: 7"},
			wantKind: MarkerDoctor,
			wantVal:  "7",
			wantOK:   true,
		},
		{
			name:     "slot marker keeps embedded colons",
			turn:     Turn{Role: RoleSystem, Content: `selected_slot: {"start_24h":"09:00"}`},
			wantKind: MarkerSlot,
			wantVal:  `{"start_24h":"09:00"}`,
			wantOK:   true,
		},
		{
			name:   "user turn mentioning a marker word is not a marker",
			turn:   Turn{Role: RoleUser, Content: "selected_flow: appointment"},
			wantOK: false,
		},
		{
			name:   "system turn without reserved prefix",
			turn:   Turn{Role: RoleSystem, Content: "note: nothing to see"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, val, ok := ParseMarker(tt.turn)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantKind, kind)
				assert.Equal(t, tt.wantVal, val)
			}
		})
	}
}

func TestLastMarkerWins(t *testing.T) {
	l := Ledger{}.
		WithMarker(MarkerFlow, "appointment").
		WithTurn(RoleUser, "actually I feel sick").
		WithMarker(MarkerFlow, "diagnosis")

	flow, ok := l.ActiveFlow()
	assert.True(t, ok)
	assert.Equal(t, FlowDiagnosis, flow)
}

func TestActiveFlowUnset(t *testing.T) {
	l := Ledger{}.WithTurn(RoleUser, "hello")
	_, ok := l.ActiveFlow()
	assert.False(t, ok)
}

func TestModelVisibleExcludesSystemTurns(t *testing.T) {
	l := Ledger{}.
		WithTurn(RoleUser, "I need a doctor").
		WithMarker(MarkerFlow, "appointment").
		WithTurn(RoleAssistant, "Which city are you in?").
		WithMarker(MarkerDoctor, "3")

	visible := l.ModelVisible()
	assert.Len(t, visible, 2)
	for _, turn := range visible {
		assert.NotEqual(t, RoleSystem, turn.Role)
	}
}

func TestTranscript(t *testing.T) {
	l := Ledger{}.
		WithTurn(RoleUser, "hi").
		WithMarker(MarkerFlow, "diagnosis").
		WithTurn(RoleAssistant, "hello")

	assert.Equal(t, "USER: hi\nASSISTANT: hello", l.Transcript())
}

func TestLastUserText(t *testing.T) {
	l := Ledger{}.
		WithTurn(RoleUser, "first").
		WithTurn(RoleAssistant, "reply").
		WithTurn(RoleUser, "second")

	assert.Equal(t, "second", l.LastUserText())
	assert.Equal(t, "", Ledger{}.LastUserText())
}
