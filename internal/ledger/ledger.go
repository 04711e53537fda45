// Package ledger defines the conversation ledger: the ordered turn list that
// is the sole cross-request state container. System-authored marker turns
// encode machine state (active flow, selected doctor, selected slot) inline;
// resolvers re-derive state by scanning the ledger on every request, so no
// server-side session object exists.
package ledger

import (
	"strings"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single conversation entry. Turns are immutable once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Ledger is the append-only ordered list of turns.
type Ledger []Turn

// Flow identifies one of the two top-level conversation modes.
type Flow string

const (
	FlowDiagnosis   Flow = "diagnosis"
	FlowAppointment Flow = "appointment"
)

// MarkerKind is the reserved content prefix of a system marker turn.
type MarkerKind string

const (
	MarkerFlow   MarkerKind = "selected_flow"
	MarkerDoctor MarkerKind = "selected_doctor_id"
	MarkerSlot   MarkerKind = "selected_slot"
	// MarkerState is the legacy appointment_state snapshot. It is still
	// recognized on read but never written: collection state is re-derived
	// from the full ledger each turn so the user can change their mind.
	MarkerState MarkerKind = "appointment_state"
)

var markerKinds = []MarkerKind{MarkerFlow, MarkerDoctor, MarkerSlot, MarkerState}

// Marker builds a system turn carrying machine state.
func Marker(kind MarkerKind, value string) Turn {
	return Turn{Role: RoleSystem, Content: string(kind) + ": " + value}
}

// ParseMarker decodes a marker turn into its kind and value. It returns
// ok=false for conversational turns and for system turns without a reserved
// prefix.
func ParseMarker(t Turn) (MarkerKind, string, bool) {
	if t.Role != RoleSystem {
		return "", "", false
	}
	for _, kind := range markerKinds {
		prefix := string(kind) + ":"
		if strings.HasPrefix(t.Content, prefix) {
			return kind, strings.TrimSpace(t.Content[len(prefix):]), true
		}
	}
	return "", "", false
}

// IsMarker reports whether the turn is a machine-state marker.
func IsMarker(t Turn) bool {
	_, _, ok := ParseMarker(t)
	return ok
}

// WithTurn returns the ledger with a conversational turn appended.
func (l Ledger) WithTurn(role Role, content string) Ledger {
	return append(l, Turn{Role: role, Content: content})
}

// WithMarker returns the ledger with a marker turn appended. Stale markers of
// the same kind are left in place; readers must take the last match.
func (l Ledger) WithMarker(kind MarkerKind, value string) Ledger {
	return append(l, Marker(kind, value))
}

// LastMarker scans from the end and returns the value of the most recent
// marker of the given kind. The last marker is authoritative.
func (l Ledger) LastMarker(kind MarkerKind) (string, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		k, v, ok := ParseMarker(l[i])
		if ok && k == kind {
			return v, true
		}
	}
	return "", false
}

// ActiveFlow returns the flow named by the most recent flow marker.
func (l Ledger) ActiveFlow() (Flow, bool) {
	v, ok := l.LastMarker(MarkerFlow)
	if !ok {
		return "", false
	}
	switch Flow(v) {
	case FlowDiagnosis, FlowAppointment:
		return Flow(v), true
	}
	return "", false
}

// ModelVisible returns the turns that may be shown to the language model:
// system turns carry out-of-band machine state, never dialogue, and are
// excluded entirely.
func (l Ledger) ModelVisible() Ledger {
	out := make(Ledger, 0, len(l))
	for _, t := range l {
		if t.Role == RoleSystem {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Transcript renders the model-visible turns as "ROLE: content" lines for
// prompt interpolation.
func (l Ledger) Transcript() string {
	var b strings.Builder
	for i, t := range l.ModelVisible() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(string(t.Role)))
		b.WriteString(": ")
		b.WriteString(t.Content)
	}
	return b.String()
}

// LastUserText returns the content of the most recent user turn.
func (l Ledger) LastUserText() string {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Role == RoleUser {
			return l[i].Content
		}
	}
	return ""
}
