package flow

import "github.com/arogyamitra/health-chatbot/internal/ledger"

// Result is what a flow pipeline produces for one turn: the assistant reply
// plus any system marker turns to append ahead of it. Markers are only
// returned once the reply has been generated, so a failed turn leaves the
// ledger untouched.
type Result struct {
	Reply   string
	Markers []ledger.Turn
}

// PatientContext is the optional patient identity submitted alongside a
// turn. It never influences routing; the booking flow copies it onto the
// appointment record at confirmation time.
type PatientContext struct {
	Name   string
	Age    string
	Gender string
	Reason string
}
