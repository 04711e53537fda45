// Package booking persists confirmed appointments and drives the
// appointment conversation flow.
package booking

import (
	"context"
	"errors"
)

// Appointment is a confirmed booking for one hourly slot. Patient fields
// are blank when the caller never supplied an identity.
type Appointment struct {
	ID            string `json:"id"`
	DoctorID      int64  `json:"doctor_id"`
	DoctorName    string `json:"doctor_name"`
	PatientName   string `json:"patient_name"`
	PatientAge    string `json:"patient_age"`
	PatientGender string `json:"patient_gender"`
	Reason        string `json:"reason_for_visit"`
	Date          string `json:"date"`       // YYYY-MM-DD
	StartTime     string `json:"start_time"` // HH:MM, 24h
	EndTime       string `json:"end_time"`   // HH:MM, 24h
	Status        string `json:"status"`
}

// ErrSlotTaken reports that another booking reserved the slot first.
var ErrSlotTaken = errors.New("booking: slot already taken")

// Repository stores appointments. Book must atomically record the
// appointment and mark its slot busy; when another booking already holds the
// slot it returns ErrSlotTaken.
type Repository interface {
	Book(ctx context.Context, appt Appointment) error
}
