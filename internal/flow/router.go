package flow

import (
	"strings"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
)

// Intent is the classified purpose of a user turn.
type Intent string

const (
	IntentDiagnosis           Intent = "DIAGNOSIS"
	IntentAppointment         Intent = "APPOINTMENT"
	IntentSwitchToAppointment Intent = "SWITCH_TO_APPOINTMENT"
	IntentSwitchToDiagnosis   Intent = "SWITCH_TO_DIAGNOSIS"
	IntentUnclear             Intent = "UNCLEAR"
)

// ParseIntent normalizes a classifier reply into one of the known intents.
// Anything unrecognized maps to IntentUnclear.
func ParseIntent(raw string) Intent {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, string(IntentSwitchToAppointment)):
		return IntentSwitchToAppointment
	case strings.Contains(normalized, string(IntentSwitchToDiagnosis)):
		return IntentSwitchToDiagnosis
	case strings.Contains(normalized, string(IntentAppointment)):
		return IntentAppointment
	case strings.Contains(normalized, string(IntentDiagnosis)):
		return IntentDiagnosis
	default:
		return IntentUnclear
	}
}

// Decision is the routing outcome for one turn. Either Clarify or a valid
// Target is set. RecordFlow tells the caller to append a selected_flow
// marker before dispatching; it is true only when the turn actually changes
// or establishes the flow, so re-routing the same ledger never stacks
// duplicate markers.
type Decision struct {
	Clarify    bool
	Target     ledger.Flow
	RecordFlow bool
}

// Route picks the flow for the current turn. The caller greets an empty
// conversation before routing, so the ledger here always has at least one
// turn.
//
// Precedence: explicit switch intents always win; a diagnosis flow that has
// hit its question threshold yields to an appointment intent; an established
// flow otherwise continues regardless of intent; a fresh conversation
// follows the classified intent; and with no flow and no clear intent the
// caller asks for clarification.
func Route(l ledger.Ledger, intent Intent, diag DiagnosisState) Decision {
	current, active := l.ActiveFlow()

	switch intent {
	case IntentSwitchToAppointment:
		return switchTo(ledger.FlowAppointment, current, active)
	case IntentSwitchToDiagnosis:
		return switchTo(ledger.FlowDiagnosis, current, active)
	}

	if active && current == ledger.FlowDiagnosis &&
		diag.Step == DiagnosisSuggestReroute && intent == IntentAppointment {
		return Decision{Target: ledger.FlowAppointment, RecordFlow: true}
	}

	if active {
		return Decision{Target: current}
	}

	switch intent {
	case IntentDiagnosis:
		return Decision{Target: ledger.FlowDiagnosis, RecordFlow: true}
	case IntentAppointment:
		return Decision{Target: ledger.FlowAppointment, RecordFlow: true}
	}

	return Decision{Clarify: true}
}

func switchTo(target ledger.Flow, current ledger.Flow, active bool) Decision {
	return Decision{
		Target:     target,
		RecordFlow: !active || current != target,
	}
}
