package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository writes appointments and slot reservations in a single
// transaction.
type PostgresRepository struct {
	db txBeginner
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithBeginner(db txBeginner) *PostgresRepository {
	if db == nil {
		panic("booking: tx beginner required")
	}
	return &PostgresRepository{db: db}
}

// Book inserts the appointment and marks the slot busy atomically. If either
// write fails the transaction rolls back and the slot stays free.
func (r *PostgresRepository) Book(ctx context.Context, appt Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO appointments (id, doctor_id, doctor_name, patient_name, patient_age, patient_gender, reason_for_visit, date, start_time, end_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		appt.ID, appt.DoctorID, appt.DoctorName, appt.PatientName, appt.PatientAge, appt.PatientGender, appt.Reason,
		appt.Date, appt.StartTime, appt.EndTime, appt.Status,
	)
	if err != nil {
		return fmt.Errorf("booking: insert appointment failed: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO slots (doctor_id, date, start_time, end_time, status) VALUES ($1, $2, $3, $4, 'busy')`,
		appt.DoctorID, appt.Date, appt.StartTime, appt.EndTime,
	)
	if err != nil {
		// The partial unique index on busy slots is the arbiter when two
		// bookings race for the same slot.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking: reserve slot failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("booking: commit failed: %w", err)
	}
	return nil
}
