package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arogyamitra/health-chatbot/internal/directory"
	"github.com/arogyamitra/health-chatbot/internal/extract"
	"github.com/arogyamitra/health-chatbot/internal/flow"
	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/internal/llm"
	"github.com/arogyamitra/health-chatbot/internal/observability/metrics"
	"github.com/arogyamitra/health-chatbot/internal/schedule"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

var pipelineTracer = otel.Tracer("healthchatbot.internal.booking")

// Pipeline drives the appointment flow for a single turn. Everything it
// needs is re-derived from the ledger, so the process holds no session state
// between turns.
type Pipeline struct {
	doctors      directory.Repository
	schedule     schedule.Repository
	appointments Repository
	gen          *llm.Generator
	logger       *logging.Logger
	metrics      *metrics.ChatMetrics
	windowDays   int
	now          func() time.Time
}

// NewPipeline wires the appointment flow dependencies.
func NewPipeline(doctors directory.Repository, sched schedule.Repository, appts Repository, gen *llm.Generator, logger *logging.Logger, m *metrics.ChatMetrics, windowDays int) *Pipeline {
	if doctors == nil || sched == nil || appts == nil || gen == nil {
		panic("booking: pipeline dependencies cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Pipeline{
		doctors:      doctors,
		schedule:     sched,
		appointments: appts,
		gen:          gen,
		logger:       logger,
		metrics:      m,
		windowDays:   windowDays,
		now:          time.Now,
	}
}

// HandleTurn advances the booking by one step. The ledger already contains
// the latest user turn; the returned markers and reply are for the caller to
// append.
func (p *Pipeline) HandleTurn(ctx context.Context, l ledger.Ledger, userText, language string, patient flow.PatientContext) (flow.Result, error) {
	ctx, span := pipelineTracer.Start(ctx, "booking.handle_turn")
	defer span.End()

	state := flow.ResolveBookingState(l)
	span.SetAttributes(attribute.Int("booking.step", int(state.Step)))

	switch state.Step {
	case flow.DoctorSelection:
		return p.handleDoctorSearch(ctx, l, userText, language)
	case flow.SlotSelection:
		return p.handleSlotSelection(ctx, l, state.DoctorID, userText, language)
	default:
		return p.handleConfirmation(ctx, state, userText, patient)
	}
}

func (p *Pipeline) handleDoctorSearch(ctx context.Context, l ledger.Ledger, userText, language string) (flow.Result, error) {
	coll := flow.ResolveCollectionState(l, userText)

	if coll.Step != flow.ReadyToSearch {
		reply, err := p.gen.Generate(ctx, llm.KindLocationCollection, map[string]string{
			"conversation_history": l.ModelVisible().Transcript(),
			"user_input":           userText,
			"city_status":          collectedStatus(coll.City != ""),
			"preference_status":    collectedStatus(coll.Department != "" || coll.DoctorName != ""),
			"language":             language,
		})
		if err != nil {
			return flow.Result{}, err
		}
		return flow.Result{Reply: reply}, nil
	}

	doctors, err := p.doctors.Search(ctx, coll.City, coll.Department, coll.DoctorName)
	if err != nil {
		// A search failure reads the same as an empty result; the user can
		// retry with different criteria.
		p.logger.Error("doctor search failed", "city", coll.City, "error", err.Error())
		doctors = nil
	}

	if id, ok := extract.SelectDoctor(userText, doctors); ok {
		doctor := doctorByID(doctors, id)
		reply, err := p.slotAvailabilityReply(ctx, l, doctor, userText, language)
		if err != nil {
			return flow.Result{}, err
		}
		return flow.Result{
			Reply:   reply,
			Markers: []ledger.Turn{ledger.Marker(ledger.MarkerDoctor, fmt.Sprintf("%d", id))},
		}, nil
	}

	// Once the list has been shown, an unrecognized reply is an ambiguous
	// selection attempt, not a request to see the list again.
	if flow.ResolveCollectionState(historyBeforeLatest(l), "").Step == flow.ReadyToSearch {
		reply, err := p.gen.Generate(ctx, llm.KindDoctorSelection, map[string]string{
			"user_input":   userText,
			"doctors_info": formatDoctors(doctors),
			"language":     language,
		})
		if err != nil {
			return flow.Result{}, err
		}
		return flow.Result{Reply: reply}, nil
	}

	reply, err := p.gen.Generate(ctx, llm.KindDoctorDisplay, map[string]string{
		"search_criteria": searchCriteria(coll),
		"city":            coll.City,
		"doctors_info":    formatDoctors(doctors),
		"language":        language,
	})
	if err != nil {
		return flow.Result{}, err
	}
	return flow.Result{Reply: reply}, nil
}

// historyBeforeLatest drops the in-flight user turn (and anything after it)
// so state can be evaluated as of the previous exchange.
func historyBeforeLatest(l ledger.Ledger) ledger.Ledger {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Role == ledger.RoleUser {
			return l[:i]
		}
	}
	return l
}

func (p *Pipeline) handleSlotSelection(ctx context.Context, l ledger.Ledger, doctorID int64, userText, language string) (flow.Result, error) {
	doctor, err := p.doctors.GetByID(ctx, doctorID)
	if err != nil {
		if !errors.Is(err, directory.ErrDoctorNotFound) {
			p.logger.Error("doctor lookup failed", "doctor_id", doctorID, "error", err.Error())
		}
		return flow.Result{Reply: "Sorry, there was an error retrieving doctor information. Please start again."}, nil
	}

	days := p.availableSlots(ctx, doctor)
	if len(days) == 0 {
		reply := fmt.Sprintf("Sorry, Dr. %s doesn't have any available slots in the next %d days. Please select a different doctor or contact the clinic directly.", doctor.Name, p.windowDays)
		return flow.Result{Reply: reply}, nil
	}

	if sel, ok := extract.SelectSlot(userText, days); ok {
		raw, err := json.Marshal(sel)
		if err != nil {
			return flow.Result{}, fmt.Errorf("booking: encode slot failed: %w", err)
		}
		reply := fmt.Sprintf("You picked %s, %s from %s to %s with Dr. %s. Please reply \"confirm\" to book this appointment.",
			sel.DayName, sel.FormattedDate, sel.Time, sel.EndTime, doctor.Name)
		return flow.Result{
			Reply:   reply,
			Markers: []ledger.Turn{ledger.Marker(ledger.MarkerSlot, string(raw))},
		}, nil
	}

	reply, err := p.slotAvailabilityReplyFor(ctx, l, doctor, days, userText, language)
	if err != nil {
		return flow.Result{}, err
	}
	return flow.Result{Reply: reply}, nil
}

func (p *Pipeline) handleConfirmation(ctx context.Context, state flow.BookingState, userText string, patient flow.PatientContext) (flow.Result, error) {
	slot := state.Slot

	if !extract.DetectConfirmation(userText) {
		reply := fmt.Sprintf("Your appointment on %s, %s from %s to %s is ready to book. Please reply \"confirm\" to proceed, or pick a different slot.",
			slot.DayName, slot.FormattedDate, slot.Time, slot.EndTime)
		return flow.Result{Reply: reply}, nil
	}

	doctorName := "the selected doctor"
	var recordedName string
	if doctor, err := p.doctors.GetByID(ctx, state.DoctorID); err == nil {
		doctorName = "Dr. " + doctor.Name
		recordedName = doctor.Name
	}

	appt := Appointment{
		ID:            uuid.NewString(),
		DoctorID:      state.DoctorID,
		DoctorName:    recordedName,
		PatientName:   patient.Name,
		PatientAge:    patient.Age,
		PatientGender: patient.Gender,
		Reason:        patient.Reason,
		Date:          slot.Date,
		StartTime:     slot.Start24,
		EndTime:       slot.End24,
		Status:        "confirmed",
	}

	details := fmt.Sprintf("Your appointment with %s on %s, %s from %s to %s is confirmed.",
		doctorName, slot.DayName, slot.FormattedDate, slot.Time, slot.EndTime)

	if err := p.appointments.Book(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			p.metrics.ObserveBooking("slot_conflict")
			reply := fmt.Sprintf("Sorry, the %s slot on %s, %s was just booked by someone else. Please pick a different slot.",
				slot.Time, slot.DayName, slot.FormattedDate)
			return flow.Result{
				Reply: reply,
				// An empty slot marker supersedes the contested one, so the
				// next turn resolves back to slot selection.
				Markers: []ledger.Turn{ledger.Marker(ledger.MarkerSlot, "")},
			}, nil
		}
		// The user keeps their confirmation message; only the record is at
		// risk, and staff can reconcile from the reference.
		p.logger.Error("appointment persist failed", "doctor_id", state.DoctorID, "date", slot.Date, "error", err.Error())
		p.metrics.ObserveBooking("persist_failed")
		reply := details + " However, we could not save it to our records just now. Please mention this when you arrive, or contact the clinic to verify."
		return flow.Result{Reply: reply}, nil
	}

	p.metrics.ObserveBooking("confirmed")
	reply := details + fmt.Sprintf(" Your booking reference is %s. We look forward to seeing you!", appt.ID)
	return flow.Result{Reply: reply}, nil
}

func (p *Pipeline) availableSlots(ctx context.Context, doctor *directory.Doctor) []schedule.DaySlots {
	now := p.now()
	busy, err := p.schedule.BusySlots(ctx, doctor.ID, now, now.AddDate(0, 0, p.windowDays))
	if err != nil {
		// Better to risk offering a taken slot than to offer nothing; the
		// booking transaction still guards the final write.
		p.logger.Error("busy slot lookup failed", "doctor_id", doctor.ID, "error", err.Error())
		busy = nil
	}
	return schedule.Generate(doctor.Timings, busy, now, p.windowDays)
}

func (p *Pipeline) slotAvailabilityReply(ctx context.Context, l ledger.Ledger, doctor *directory.Doctor, userText, language string) (string, error) {
	days := p.availableSlots(ctx, doctor)
	if len(days) == 0 {
		return fmt.Sprintf("Sorry, Dr. %s doesn't have any available slots in the next %d days. Please select a different doctor or contact the clinic directly.", doctor.Name, p.windowDays), nil
	}
	return p.slotAvailabilityReplyFor(ctx, l, doctor, days, userText, language)
}

func (p *Pipeline) slotAvailabilityReplyFor(ctx context.Context, l ledger.Ledger, doctor *directory.Doctor, days []schedule.DaySlots, userText, language string) (string, error) {
	return p.gen.Generate(ctx, llm.KindSlotAvailability, map[string]string{
		"doctor_name":       doctor.Name,
		"doctor_department": doctor.Department,
		"user_input":        userText,
		"available_slots":   formatSlots(days),
		"language":          language,
	})
}

func doctorByID(doctors []directory.Doctor, id int64) *directory.Doctor {
	for i := range doctors {
		if doctors[i].ID == id {
			return &doctors[i]
		}
	}
	return &directory.Doctor{ID: id}
}

func collectedStatus(collected bool) string {
	if collected {
		return "collected"
	}
	return "missing"
}

func searchCriteria(coll flow.CollectionState) string {
	if coll.DoctorName != "" {
		return "Dr. " + coll.DoctorName
	}
	if coll.Department != "" {
		return coll.Department
	}
	return "all doctors"
}

func formatDoctors(doctors []directory.Doctor) string {
	if len(doctors) == 0 {
		return "No doctors found."
	}
	var sb strings.Builder
	for _, d := range doctors {
		timings := d.Timings
		if timings == "" {
			timings = "Contact clinic for timings"
		}
		fmt.Fprintf(&sb, "- Dr. %s - %s - %s - Available: %s\n", d.Name, d.Department, d.Location, timings)
	}
	return sb.String()
}

func formatSlots(days []schedule.DaySlots) string {
	var sb strings.Builder
	for _, day := range days {
		fmt.Fprintf(&sb, "%s, %s\n", day.DayName, day.FormattedDate)
		for _, slot := range day.Slots {
			fmt.Fprintf(&sb, "  %s - %s\n", slot.Time, slot.EndTime)
		}
	}
	return sb.String()
}
