package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reports doctor busy intervals. Busy rows are written by the
// booking transaction, not through this interface.
type Repository interface {
	BusySlots(ctx context.Context, doctorID int64, from, to time.Time) ([]BusyInterval, error)
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores slot status rows in the relational database.
type PostgresRepository struct {
	db pgQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("schedule: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db pgQuerier) *PostgresRepository {
	if db == nil {
		panic("schedule: querier required")
	}
	return &PostgresRepository{db: db}
}

// BusySlots returns the busy intervals for the doctor within [from, to].
func (r *PostgresRepository) BusySlots(ctx context.Context, doctorID int64, from, to time.Time) ([]BusyInterval, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM slots
		WHERE doctor_id = $1 AND date >= $2 AND date <= $3 AND status = 'busy'
		ORDER BY date, start_time
	`
	rows, err := r.db.Query(ctx, query, doctorID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("schedule: busy slots query failed: %w", err)
	}
	defer rows.Close()

	var busy []BusyInterval
	for rows.Next() {
		var b BusyInterval
		if err := rows.Scan(&b.Date, &b.Start, &b.End); err != nil {
			return nil, fmt.Errorf("schedule: scan failed: %w", err)
		}
		busy = append(busy, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: rows failed: %w", err)
	}
	return busy, nil
}
